package app

import (
	"fmt"

	profileHTTP "github.com/healthtracker/backend/internal/profile/http"
	profileRepository "github.com/healthtracker/backend/internal/profile/repository"
	profileUseCase "github.com/healthtracker/backend/internal/profile/usecase"
)

// ProfileRepository returns the health profile repository based on database driver.
func (c *Container) ProfileRepository() (profileUseCase.ProfileRepository, error) {
	var err error
	c.profileRepoInit.Do(func() {
		c.profileRepo, err = c.initProfileRepository()
		if err != nil {
			c.initErrors["profileRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["profileRepo"]; exists {
		return nil, storedErr
	}
	return c.profileRepo, nil
}

// ProfileUseCase returns the health profile use case instance.
func (c *Container) ProfileUseCase() (profileUseCase.UseCase, error) {
	var err error
	c.profileUseCaseInit.Do(func() {
		c.profileUseCase, err = c.initProfileUseCase()
		if err != nil {
			c.initErrors["profileUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["profileUseCase"]; exists {
		return nil, storedErr
	}
	return c.profileUseCase, nil
}

// ProfileHandler returns the health profile HTTP handler.
func (c *Container) ProfileHandler() (*profileHTTP.ProfileHandler, error) {
	var err error
	c.profileHandlerInit.Do(func() {
		c.profileHandler, err = c.initProfileHandler()
		if err != nil {
			c.initErrors["profileHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["profileHandler"]; exists {
		return nil, storedErr
	}
	return c.profileHandler, nil
}

// initProfileRepository creates the profile repository based on the database driver.
func (c *Container) initProfileRepository() (profileUseCase.ProfileRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for profile repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return profileRepository.NewMySQLProfileRepository(db), nil
	case "postgres":
		return profileRepository.NewPostgreSQLProfileRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initProfileUseCase creates the profile use case with all its dependencies.
func (c *Container) initProfileUseCase() (profileUseCase.UseCase, error) {
	profileRepo, err := c.ProfileRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile repository for profile use case: %w", err)
	}

	fieldCipher, err := c.FieldCipher()
	if err != nil {
		return nil, fmt.Errorf("failed to get field cipher for profile use case: %w", err)
	}

	return profileUseCase.NewProfileUseCase(profileRepo, fieldCipher), nil
}

// initProfileHandler creates the profile HTTP handler with all its dependencies.
func (c *Container) initProfileHandler() (*profileHTTP.ProfileHandler, error) {
	profileUC, err := c.ProfileUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile use case for profile handler: %w", err)
	}

	return profileHTTP.NewProfileHandler(profileUC, c.Logger()), nil
}
