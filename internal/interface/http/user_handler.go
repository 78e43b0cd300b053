package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/medication-reminder/internal/application/state"
	"github.com/oksasatya/medication-reminder/internal/application/usecase"
	"github.com/oksasatya/medication-reminder/internal/container"
	"github.com/oksasatya/medication-reminder/internal/domain/repository"
	"github.com/oksasatya/medication-reminder/internal/interface/middleware"
	"github.com/oksasatya/medication-reminder/pkg/helpers"
	"github.com/oksasatya/medication-reminder/pkg/response"
	"github.com/oksasatya/medication-reminder/pkg/validation"
)

const maxUploadBytes = 5 << 20

type UserHandler struct {
	C       *container.Container
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewUserHandler(c *container.Container) *UserHandler {
	return &UserHandler{
		C:       c,
		Logger:  c.Logger,
		Cookies: helpers.NewCookie(c.Config.CookieDomain, c.Config.CookieSecure),
	}
}

type updateProfileRequest struct {
	Name      *string  `json:"name"`
	Email     *string  `json:"email"`
	Password  *string  `json:"password"`
	AvatarURL *string  `json:"avatarUrl"`
	Latitude  *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" binding:"omitempty,longitude"`
}

func (r updateProfileRequest) input() repository.UpdateUserInput {
	return repository.UpdateUserInput{
		Name:      r.Name,
		Email:     r.Email,
		Password:  r.Password,
		AvatarURL: r.AvatarURL,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

// publicUserView is what other users may see of an account.
type publicUserView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,latitude"`
	Longitude *float64 `json:"longitude" binding:"required,longitude"`
}

// signedIn loads the current user into a fresh AuthState.
func (h *UserHandler) signedIn(c *gin.Context) (*state.AuthState, usecase.UserUseCases, bool) {
	ucs, err := h.C.UserUseCases()
	if err != nil {
		fail(c, h.Logger, err, "user backend unavailable")
		return nil, ucs, false
	}
	st := state.NewAuthState(ucs,
		state.WithAuthLogger(h.Logger),
		state.WithLocationSyncTimeout(h.C.Config.LocationSyncTimeout),
	)
	view, err := st.Refresh(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err, "could not load user")
		return nil, ucs, false
	}
	if view == nil {
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
		return nil, ucs, false
	}
	return st, ucs, true
}

// Me GET /api/me
func (h *UserHandler) Me(c *gin.Context) {
	st, _, ok := h.signedIn(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, st.Current(), "profile", nil)
}

// UpdateMe PUT /api/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	in := req.input()
	if in.IsEmpty() {
		response.Error[any](c, http.StatusBadRequest, "nothing to update", nil)
		return
	}
	st, _, ok := h.signedIn(c)
	if !ok {
		return
	}
	if _, err := st.UpdateProfile(c.Request.Context(), in); err != nil {
		fail(c, h.Logger, err, "failed to update profile")
		return
	}
	response.Success(c, http.StatusOK, st.Current(), "profile updated", nil)
}

// UpdateLocation POST /api/me/location
// Runs the same background sync as login and waits for its outcome.
func (h *UserHandler) UpdateLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	st, _, ok := h.signedIn(c)
	if !ok {
		return
	}
	done := st.SyncLocation(c.Request.Context(), st.Current().ID, *req.Latitude, *req.Longitude)
	select {
	case err := <-done:
		if err != nil {
			fail(c, h.Logger, err, "failed to update location")
			return
		}
	case <-c.Request.Context().Done():
		return
	}
	response.Success(c, http.StatusOK, st.Current(), "location updated", nil)
}

// DeleteMe DELETE /api/me
func (h *UserHandler) DeleteMe(c *gin.Context) {
	st, ucs, ok := h.signedIn(c)
	if !ok {
		return
	}
	prev := middleware.Holder(c).Get()
	if err := ucs.Delete.Execute(c.Request.Context(), st.Current().ID); err != nil {
		fail(c, h.Logger, err, "failed to delete account")
		return
	}
	if prev != nil {
		if err := h.C.Sessions.Revoke(c.Request.Context(), prev); err != nil {
			h.Logger.WithError(err).Warn("revoke session failed")
		}
	}
	h.Cookies.Clear(c)
	c.Status(http.StatusNoContent)
}

// GetUser GET /api/users/:id
// Accounts other than the caller's expose only id and name.
func (h *UserHandler) GetUser(c *gin.Context) {
	ucs, err := h.C.UserUseCases()
	if err != nil {
		fail(c, h.Logger, err, "user backend unavailable")
		return
	}
	u, err := ucs.Find.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err, "could not load user")
		return
	}
	if u == nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	if u.ID != middleware.UserID(c) {
		response.Success(c, http.StatusOK, publicUserView{ID: u.ID, Name: u.Name.Value()}, "user", nil)
		return
	}
	response.Success(c, http.StatusOK, state.NewUserView(u), "user", nil)
}

// UploadAvatar POST /api/me/avatar (multipart field "file")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	st, _, ok := h.signedIn(c)
	if !ok {
		return
	}
	out, ok := upload(c, h.C, h.Logger, st.Current().ID, "avatars")
	if !ok {
		return
	}
	if _, err := st.UpdateProfile(c.Request.Context(), repository.UpdateUserInput{AvatarURL: &out.URL}); err != nil {
		fail(c, h.Logger, err, "failed to update avatar")
		return
	}
	response.Success(c, http.StatusOK, st.Current(), "avatar updated", nil)
}

// upload stores the multipart "file" field under the user's folder.
func upload(c *gin.Context, ctr *container.Container, logger *logrus.Logger, userID, folder string) (usecase.UploadFileOutput, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "file is required", map[string]string{"file": "is required"})
		return usecase.UploadFileOutput{}, false
	}
	ct := fh.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "image/") {
		response.Error[any](c, http.StatusBadRequest, "file must be an image", map[string]string{"file": "must be an image"})
		return usecase.UploadFileOutput{}, false
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, logger, err, "could not read upload")
		return usecase.UploadFileOutput{}, false
	}
	defer func() { _ = f.Close() }()

	out, err := ctr.UploadFile().Execute(c.Request.Context(), usecase.UploadFileInput{
		UserID:      userID,
		Folder:      folder,
		FileName:    fh.Filename,
		ContentType: ct,
		Body:        f,
	})
	if err != nil {
		fail(c, logger, err, "upload failed")
		return usecase.UploadFileOutput{}, false
	}
	return out, true
}
