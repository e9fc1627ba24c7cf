package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/suraksha-api/internal/application"
	"github.com/oksasatya/suraksha-api/internal/interface/middleware"
	"github.com/oksasatya/suraksha-api/pkg/response"
)

const avatarField = "image"

// multipartOverhead is the body allowance on top of the file itself for
// boundaries, part headers and the other form fields.
const multipartOverhead = 64 << 10

var avatarTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
}

type UserHandler struct {
	Svc            *application.UserService
	Res            Serializer
	Errs           Errors
	AvatarMaxBytes int64
}

func NewUserHandler(svc *application.UserService, res Serializer, errs Errors, avatarMaxBytes int64) *UserHandler {
	return &UserHandler{Svc: svc, Res: res, Errs: errs, AvatarMaxBytes: avatarMaxBytes}
}

func userID(c *gin.Context) string {
	return c.GetString(middleware.CtxUserIDKey)
}

// Me GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), userID(c))
	if err != nil {
		h.Errs.Write(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.Res.User(u), "Profile details fetched")
}

// Update PUT /api/users
func (h *UserHandler) Update(c *gin.Context) {
	var in application.UpdateProfileInput
	if !h.Errs.bindJSON(c, &in) {
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), userID(c), in)
	if err != nil {
		h.Errs.Write(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.Res.User(u), "Profile details updated")
}

// UpdatePassword PUT /api/users/password
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	var in application.ChangePasswordInput
	if !h.Errs.bindJSON(c, &in) {
		return
	}
	u, err := h.Svc.ChangePassword(c.Request.Context(), userID(c), in)
	if err != nil {
		h.Errs.Write(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.Res.User(u), "User's password updated")
}

// SendVerification POST /api/users/email-verification
func (h *UserHandler) SendVerification(c *gin.Context) {
	if err := h.Svc.ResendVerification(c.Request.Context(), userID(c)); err != nil {
		h.Errs.Write(c, err)
		return
	}
	response.Success(c, http.StatusAccepted, []any{}, "Verification email is being processed")
}

// UploadAvatar POST /api/users/upload (multipart, field "image")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	file, closer, ok := h.readAvatar(c)
	if !ok {
		return
	}
	defer closer.Close()

	location, err := h.Svc.ReplaceAvatar(c.Request.Context(), userID(c), file)
	if err != nil {
		h.Errs.Write(c, err)
		return
	}
	response.Success(c, http.StatusOK, location, "Profile image updated")
}

// readAvatar enforces presence, size and sniffed type of the upload.
func (h *UserHandler) readAvatar(c *gin.Context) (application.UploadedFile, io.Closer, bool) {
	tooLarge := map[string]string{avatarField: fmt.Sprintf("may not be greater than %d kilobytes", h.AvatarMaxBytes/1024)}
	if h.AvatarMaxBytes > 0 {
		limit := h.AvatarMaxBytes + multipartOverhead
		if c.Request.ContentLength > limit {
			h.Errs.Invalid(c, tooLarge)
			return application.UploadedFile{}, nil, false
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	fh, err := c.FormFile(avatarField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.Errs.Invalid(c, tooLarge)
			return application.UploadedFile{}, nil, false
		}
		h.Errs.Invalid(c, map[string]string{avatarField: "is required"})
		return application.UploadedFile{}, nil, false
	}
	if h.AvatarMaxBytes > 0 && fh.Size > h.AvatarMaxBytes {
		h.Errs.Invalid(c, tooLarge)
		return application.UploadedFile{}, nil, false
	}
	f, err := fh.Open()
	if err != nil {
		h.Errs.Write(c, err)
		return application.UploadedFile{}, nil, false
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		_ = f.Close()
		h.Errs.Invalid(c, map[string]string{avatarField: "failed to upload"})
		return application.UploadedFile{}, nil, false
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	if !avatarTypes[contentType] {
		_ = f.Close()
		h.Errs.Invalid(c, map[string]string{avatarField: "must be a file of type: png, jpg, gif"})
		return application.UploadedFile{}, nil, false
	}
	return application.UploadedFile{
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Content:     io.MultiReader(bytes.NewReader(head), f),
	}, f, true
}

// Delete DELETE /api/users/delete
func (h *UserHandler) Delete(c *gin.Context) {
	var in application.DeleteAccountInput
	if !h.Errs.bindJSON(c, &in) {
		return
	}
	if err := h.Svc.DeleteAccount(c.Request.Context(), userID(c), in); err != nil {
		h.Errs.Write(c, err)
		return
	}
	response.NoContent(c)
}
