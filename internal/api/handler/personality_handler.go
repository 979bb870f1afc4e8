package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/persome/account-system/internal/core/ports"
)

type PersonalityHandler struct {
	personalityService ports.PersonalityService
}

func NewPersonalityHandler(personalityService ports.PersonalityService) *PersonalityHandler {
	return &PersonalityHandler{personalityService: personalityService}
}

type saveResultRequest struct {
	MbtiType          string `json:"mbti_type" validate:"required,len=4"`
	StaticDescription string `json:"static_description" validate:"required"`
	AIDescription     string `json:"ai_description,omitempty"`
}

// Save persists a completed assessment for the current user.
//
// @Summary      Save a personality result
// @Tags         personality
// @Accept       json
// @Produce      json
// @Param        body  body      saveResultRequest  true  "Completed assessment"
// @Success      201   {object}  domain.PersonalityResult
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /personality/results [post]
func (h *PersonalityHandler) Save(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req saveResultRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.personalityService.SaveResult(c.Request().Context(), ports.SaveResultInput{
		UserID:            userID,
		MbtiType:          req.MbtiType,
		StaticDescription: req.StaticDescription,
		AIDescription:     req.AIDescription,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, result)
}

// List returns the current user's results, newest first.
//
// @Summary      List personality results
// @Tags         personality
// @Produce      json
// @Success      200  {array}  domain.PersonalityResult
// @Failure      401  {object}  map[string]string
// @Router       /personality/results [get]
func (h *PersonalityHandler) List(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	results, err := h.personalityService.ListResults(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, results)
}

// Get returns one result owned by the current user.
//
// @Summary      Get a personality result
// @Tags         personality
// @Produce      json
// @Param        id   path      string  true  "Result id"
// @Success      200  {object}  domain.PersonalityResult
// @Failure      404  {object}  map[string]string
// @Router       /personality/results/{id} [get]
func (h *PersonalityHandler) Get(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	result, err := h.personalityService.GetResult(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
