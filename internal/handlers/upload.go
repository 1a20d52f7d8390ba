package handlers

import (
	"math"
	"mime/multipart"
	"net/http"

	"glow/internal/crop"
	"glow/internal/editor"
	"glow/internal/invitation"
	"glow/pkg/utils"
)

const (
	DefaultMaxUploadSize = 8 << 20

	// MaxConcurrentCrops bounds decode/rotate/resize work, which holds a
	// full bitmap of the source in memory.
	MaxConcurrentCrops = 4
)

var cropGuard = make(chan struct{}, MaxConcurrentCrops)

func (a *App) uploadLimit() int64 {
	return utils.SizeToBytes(a.Config.Image.MaxUploadSize, DefaultMaxUploadSize)
}

// formFile parses a multipart request of at most limit bytes and returns
// the named file part.
func formFile(w http.ResponseWriter, r *http.Request, name string, limit int64) (*multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, err
	}
	_, fh, err := r.FormFile(name)
	return fh, err
}

// zoomArea shrinks base around its center by zoom, which is what the crop
// dialog shows when the user zooms without panning.
func zoomArea(base crop.Rect, zoom float64) crop.Rect {
	if zoom <= 1 {
		return base
	}
	w := int(math.Round(float64(base.Width) / zoom))
	h := int(math.Round(float64(base.Height) / zoom))
	return crop.Rect{
		X:      base.X + (base.Width-w)/2,
		Y:      base.Y + (base.Height-h)/2,
		Width:  w,
		Height: h,
	}
}

// UploadImage crops an uploaded picture to the field's ratio and applies it.
// Form fields: image (file), zoom, rotation, and optionally x, y, width,
// height for a panned crop area.
// POST /api/sessions/{sid}/images/{field}
func (a *App) UploadImage(w http.ResponseWriter, r *http.Request) {
	l, ok := a.lookup(w, r, true)
	if !ok {
		return
	}
	field, ok := fieldParam(w, r)
	if !ok {
		return
	}
	if field.Kind() != invitation.KindImage {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Trường này không phải là ảnh.")
		return
	}
	if !l.sess.EditMode() {
		fail(w, editor.ErrNotEditing)
		return
	}

	limit := a.uploadLimit()
	fh, err := formFile(w, r, "image", limit)
	if err != nil {
		fail(w, err)
		return
	}
	src, _, err := utils.ReadUpload(fh, limit, utils.ImageTypes)
	if err != nil {
		fail(w, err)
		return
	}

	cs, err := crop.NewSession(field, src)
	if err != nil {
		fail(w, err)
		return
	}
	zoom := utils.ParseFloat(r.FormValue("zoom"), crop.MinZoom, crop.MinZoom, crop.MaxZoom)
	rotation := utils.ParseFloat(r.FormValue("rotation"), 0, 0, crop.MaxRotation)
	area := zoomArea(cs.State().Area, zoom)
	if r.FormValue("width") != "" {
		area = crop.Rect{
			X:      utils.ParseInt(r.FormValue("x"), 0, 0, math.MaxInt32),
			Y:      utils.ParseInt(r.FormValue("y"), 0, 0, math.MaxInt32),
			Width:  utils.ParseInt(r.FormValue("width"), 0, 0, math.MaxInt32),
			Height: utils.ParseInt(r.FormValue("height"), 0, 0, math.MaxInt32),
		}
	}
	if err := cs.Update(zoom, rotation, area); err != nil {
		fail(w, err)
		return
	}

	select {
	case cropGuard <- struct{}{}:
	case <-r.Context().Done():
		utils.WriteError(w, http.StatusServiceUnavailable, utils.ErrServerTimeout, "Server is busy.")
		return
	}
	res, err := cs.Commit(crop.Options{OutputWidth: a.Config.Image.OutputWidth, Quality: a.Config.Image.Quality})
	<-cropGuard
	if err != nil {
		fail(w, err)
		return
	}

	ref, err := a.Media.Store(r.Context(), field, res)
	if err != nil {
		fail(w, err)
		return
	}
	if err := l.sess.ApplyImage(field, ref); err != nil {
		fail(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"field":  field,
		"width":  res.Width,
		"height": res.Height,
		"status": l.saver.Status(),
	})
}

// UploadMusic replaces the background music.
// POST /api/sessions/{sid}/music
func (a *App) UploadMusic(w http.ResponseWriter, r *http.Request) {
	l, ok := a.lookup(w, r, true)
	if !ok {
		return
	}
	if !l.sess.EditMode() {
		fail(w, editor.ErrNotEditing)
		return
	}
	limit := a.uploadLimit()
	fh, err := formFile(w, r, "music", limit)
	if err != nil {
		fail(w, err)
		return
	}
	data, contentType, err := utils.ReadUpload(fh, limit, utils.AudioTypes)
	if err != nil {
		fail(w, err)
		return
	}
	ref, err := a.Media.PutAudio(r.Context(), data, contentType)
	if err != nil {
		fail(w, err)
		return
	}
	if err := l.sess.ApplyImage(invitation.MusicURL, ref); err != nil {
		fail(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"field":  invitation.MusicURL,
		"status": l.saver.Status(),
	})
}
