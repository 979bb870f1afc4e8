package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/persome/account-system/internal/core/ports"
)

type ProfileHandler struct {
	profileService ports.ProfileService
}

func NewProfileHandler(profileService ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type updateProfileRequest struct {
	FullName    *string `json:"full_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
	Locale      *string `json:"locale,omitempty"`
}

type updateAvatarRequest struct {
	AvatarURL string `json:"avatar_url" validate:"required,url"`
}

type updatePreferencesRequest struct {
	Preferences map[string]string `json:"preferences" validate:"required"`
}

// Get returns the current user's profile.
//
// @Summary      Get own profile
// @Tags         profile
// @Produce      json
// @Success      200  {object}  domain.UserData
// @Failure      401  {object}  map[string]string
// @Router       /profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.profileService.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Update edits profile fields; omitted fields stay unchanged.
//
// @Summary      Update own profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      updateProfileRequest  true  "Fields to update"
// @Success      200   {object}  domain.UserData
// @Failure      401   {object}  map[string]string
// @Router       /profile [put]
func (h *ProfileHandler) Update(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.profileService.UpdateProfile(c.Request().Context(), userID, ports.ProfileUpdateInput{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Timezone:    req.Timezone,
		Locale:      req.Locale,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateAvatar replaces the avatar URL.
//
// @Summary      Update avatar
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      updateAvatarRequest  true  "New avatar URL"
// @Success      200   {object}  domain.UserData
// @Failure      401   {object}  map[string]string
// @Router       /profile/avatar [put]
func (h *ProfileHandler) UpdateAvatar(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateAvatarRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.profileService.UpdateAvatar(c.Request().Context(), userID, req.AvatarURL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdatePreferences merges the given preferences over the stored ones.
//
// @Summary      Update preferences
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      updatePreferencesRequest  true  "Preferences to merge"
// @Success      200   {object}  domain.UserData
// @Failure      401   {object}  map[string]string
// @Router       /profile/preferences [put]
func (h *ProfileHandler) UpdatePreferences(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updatePreferencesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.profileService.UpdatePreferences(c.Request().Context(), userID, req.Preferences)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
