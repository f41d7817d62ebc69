package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/productivity/api/http/presenter"
	"github.com/artem13815/productivity/pkg/apperr"
	"github.com/artem13815/productivity/pkg/auth"
	"github.com/artem13815/productivity/pkg/metrics"
	"github.com/artem13815/productivity/pkg/storage/photo"
)

type AuthHandler struct {
	useCase auth.AuthUseCase
	log     *slog.Logger
}

func NewAuthHandler(useCase auth.AuthUseCase, log *slog.Logger) *AuthHandler {
	return &AuthHandler{useCase: useCase, log: log}
}

type registerRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Name     string `json:"name" form:"name"`
}

type profileResponse struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl,omitempty"`
	Token    string `json:"token"`
}

func newProfileResponse(res auth.AuthResult) profileResponse {
	p := res.User.Profile()
	return profileResponse{Email: p.Email, Name: p.Name, PhotoURL: p.PhotoURL, Token: res.Token}
}

func recordAuth(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = apperr.KindOf(err).String()
	}
	metrics.AuthAttemptsTotal.WithLabelValues(action, outcome).Inc()
}

// Register handles user registration.
// Accepts multipart/form-data with a "userData" JSON part and an optional
// "photo" file, or a plain JSON body.
// @Summary Register user
// @Tags    auth
// @Accept  mpfd,json
// @Produce json
// @Param   userData formData string false "JSON {email,password,name}"
// @Param   photo    formData file   false "profile photo (jpg, png, gif, webp; up to 5MB)"
// @Success 201 {object} profileResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 429 {object} presenter.ErrorResponse
// @Router  /register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	in, err := h.parseRegister(c)
	if err != nil {
		return presenter.Fail(c, h.log, err)
	}
	result, err := h.useCase.Register(c.UserContext(), in)
	recordAuth("register", err)
	if err != nil {
		return presenter.Fail(c, h.log, err)
	}
	h.log.InfoContext(c.UserContext(), "user registered", slog.String("user_id", result.User.ID.String()))
	return presenter.JSON(c, http.StatusCreated, newProfileResponse(result))
}

func (h *AuthHandler) parseRegister(c *fiber.Ctx) (auth.RegisterInput, error) {
	var req registerRequest
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		if err := c.BodyParser(&req); err != nil {
			return auth.RegisterInput{}, errInvalidJSON
		}
		return auth.RegisterInput{Email: req.Email, Password: req.Password, Name: req.Name}, nil
	}

	if raw := c.FormValue("userData"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			return auth.RegisterInput{}, apperr.Validation("invalid userData payload")
		}
	} else if err := c.BodyParser(&req); err != nil {
		return auth.RegisterInput{}, apperr.Validation("invalid form payload")
	}
	in := auth.RegisterInput{Email: req.Email, Password: req.Password, Name: req.Name}

	form, err := c.MultipartForm()
	if err != nil {
		return auth.RegisterInput{}, apperr.Validation("invalid photo upload")
	}
	files := form.File["photo"]
	if len(files) == 0 {
		return in, nil
	}
	p, err := readPhoto(files[0])
	if err != nil {
		return auth.RegisterInput{}, err
	}
	in.Photo = p
	return in, nil
}

func readPhoto(fh *multipart.FileHeader) (*auth.Photo, error) {
	if fh.Size > photo.MaxBytes {
		return nil, apperr.ValidationFields("Photo is too large", map[string]string{"photo": "must be at most 5MB"})
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, photo.MaxBytes+1))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &auth.Photo{Filename: fh.Filename, ContentType: fh.Header.Get(fiber.HeaderContentType), Data: data}, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles user login.
// @Summary Login
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "login payload"
// @Success 200 {object} profileResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 429 {object} presenter.ErrorResponse
// @Router  /login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Fail(c, h.log, errInvalidJSON)
	}
	result, err := h.useCase.Login(c.UserContext(), req.Email, req.Password)
	recordAuth("login", err)
	if err != nil {
		return presenter.Fail(c, h.log, err)
	}
	return presenter.JSON(c, http.StatusOK, newProfileResponse(result))
}
