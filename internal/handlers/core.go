package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"glow/internal/auth"
	"glow/internal/autosave"
	"glow/internal/crop"
	"glow/internal/database"
	"glow/internal/editor"
	"glow/internal/identity"
	"glow/internal/invitation"
	"glow/internal/media"
	"glow/internal/rsvp"
	"glow/pkg/logger"
	"glow/pkg/utils"
)

const genericMessage = "Có lỗi xảy ra, vui lòng thử lại sau!"

// fail maps a domain error onto the JSON error envelope.
func fail(w http.ResponseWriter, err error) {
	var tooBig *http.MaxBytesError
	switch {
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrUserNotFound):
		utils.WriteError(w, http.StatusUnauthorized, utils.ErrAuthRequired, "Vui lòng đăng nhập để tiếp tục.")
	case errors.Is(err, auth.ErrForbidden), errors.Is(err, editor.ErrCannotEdit):
		utils.WriteError(w, http.StatusForbidden, utils.ErrPermissionDenied, "Bạn không có quyền thực hiện thao tác này. Vui lòng liên hệ quản trị viên để được cấp quyền.")
	case errors.Is(err, database.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, utils.ErrResourceNotFound, "Không tìm thấy thiệp mời.")

	case errors.Is(err, editor.ErrSessionEnded), errors.Is(err, autosave.ErrStopped):
		utils.WriteError(w, http.StatusGone, utils.ErrEditorSessionEnded, "Phiên chỉnh sửa đã kết thúc, vui lòng mở lại thiệp.")
	case errors.Is(err, editor.ErrNotEditing), errors.Is(err, editor.ErrReadonly):
		utils.WriteError(w, http.StatusConflict, utils.ErrEditorNotEditing, "Vui lòng bật chế độ chỉnh sửa trước.")
	case errors.Is(err, autosave.ErrSaveInFlight):
		utils.WriteError(w, http.StatusConflict, utils.ErrEditorSaveInFlight, "Đang lưu, vui lòng chờ giây lát.")
	case errors.Is(err, invitation.ErrInvalidDate):
		utils.WriteError(w, http.StatusBadRequest, utils.ErrEditorInvalidValue, "Ngày không hợp lệ.")
	case errors.Is(err, invitation.ErrInvalidTime):
		utils.WriteError(w, http.StatusBadRequest, utils.ErrEditorInvalidValue, "Giờ không hợp lệ.")
	case errors.Is(err, editor.ErrFontSize):
		utils.WriteError(w, http.StatusBadRequest, utils.ErrEditorInvalidValue, "Cỡ chữ phải từ 10 đến 80.")
	case errors.Is(err, invitation.ErrCustomerNameNeeded):
		utils.WriteError(w, http.StatusBadRequest, utils.ErrEditorInvalidValue, "Vui lòng nhập tên khách hàng hoặc tên dự án!")
	case errors.Is(err, invitation.ErrGuestNameRequired):
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Vui lòng nhập tên khách mời.")
	case errors.Is(err, invitation.ErrUnknownField), errors.Is(err, editor.ErrWrongKind):
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Trường không hợp lệ.")
	case errors.Is(err, auth.ErrUnknownRole):
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Quyền không hợp lệ.")

	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Vui lòng chọn tệp.")
	case errors.As(err, &tooBig), errors.Is(err, utils.ErrUploadTooLarge), errors.Is(err, multipart.ErrMessageTooLarge):
		utils.WriteError(w, http.StatusRequestEntityTooLarge, utils.ErrRequestBodyTooLarge, "Tệp quá lớn.")
	case errors.Is(err, utils.ErrUnsupportedType), errors.Is(err, crop.ErrInvalidSource):
		utils.WriteError(w, http.StatusUnsupportedMediaType, utils.ErrRequestUnSupportedMedia, "Định dạng tệp không được hỗ trợ.")
	case errors.Is(err, crop.ErrInvalidArea), errors.Is(err, crop.ErrInvalidAspect):
		utils.WriteError(w, http.StatusBadRequest, utils.ErrImageInvalidArea, "Vùng cắt ảnh không hợp lệ.")
	case errors.Is(err, media.ErrNotConfigured):
		utils.WriteError(w, http.StatusServiceUnavailable, utils.ErrConfigNotConfigured, "Chưa cấu hình nơi lưu trữ.")

	case errors.Is(err, rsvp.ErrNameRequired):
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRSVPNameRequired, rsvp.Message(err))
	case errors.Is(err, rsvp.ErrInvalidAttendance), errors.Is(err, rsvp.ErrNoInvitation):
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRSVPInvalid, rsvp.Message(err))
	case errors.Is(err, rsvp.ErrStoreUnavailable):
		utils.WriteError(w, http.StatusServiceUnavailable, utils.ErrRSVPStoreUnavailable, rsvp.Message(err))

	case errors.Is(err, identity.ErrNotConfigured):
		utils.WriteError(w, http.StatusServiceUnavailable, utils.ErrConfigNotConfigured, identity.Message(err))
	case errors.Is(err, identity.ErrNetwork):
		utils.WriteError(w, http.StatusBadGateway, utils.ErrNetworkUnreachable, identity.Message(err))

	default:
		logger.LogError("Request failed: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, genericMessage)
	}
}

// viewer returns the signed-in user, if any. It never writes a response.
func (a *App) viewer(r *http.Request) (auth.User, bool) {
	claims, err := a.Tokens.FromRequest(r)
	if err != nil {
		return auth.User{}, false
	}
	u, err := a.Store.GetUser(r.Context(), claims.UserID)
	if err != nil {
		return auth.User{}, false
	}
	return u, true
}

// require re-reads the caller's role from the store and checks need. On
// failure it has already written the response.
func (a *App) require(w http.ResponseWriter, r *http.Request, need auth.Need) (auth.User, bool) {
	claims, err := a.Tokens.FromRequest(r)
	if err != nil {
		fail(w, auth.ErrUnauthenticated)
		return auth.User{}, false
	}
	u, err := auth.Require(r.Context(), a.Store, claims.UserID, need)
	if err != nil {
		fail(w, err)
		return auth.User{}, false
	}
	a.follow(u)
	return u, true
}

// follow pushes a role change noticed on a request to the live session so
// open editors pick it up.
func (a *App) follow(u auth.User) {
	as := a.Sessions.For(u.UID)
	if cur, signedIn := as.Current(); !signedIn || cur.Role != u.Role {
		as.SignIn(u)
	}
}

// owns reports whether u may manage inv. Admins manage everything.
func owns(u auth.User, inv invitation.Saved) bool {
	return u.Capabilities().IsAdmin || strings.EqualFold(u.Email, inv.OwnerEmail)
}

// loadOwned fetches invitation {id} and checks the caller may manage it.
func (a *App) loadOwned(w http.ResponseWriter, r *http.Request, need auth.Need) (auth.User, invitation.Saved, bool) {
	u, ok := a.require(w, r, need)
	if !ok {
		return u, invitation.Saved{}, false
	}
	inv, err := a.Store.GetInvitation(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, err)
		return u, inv, false
	}
	if !owns(u, inv) {
		fail(w, auth.ErrForbidden)
		return u, inv, false
	}
	return u, inv, true
}

func pagePrefix(invitationID string) string {
	return "page:" + invitationID + ":"
}

// invalidate drops every cached guest page of an invitation.
func (a *App) invalidate(invitationID string) {
	if a.Cache != nil && invitationID != "" {
		a.Cache.DeletePrefix(pagePrefix(invitationID))
	}
}
