package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"glow/internal/auth"
	"glow/pkg/cache"
	"glow/pkg/generator"
	"glow/pkg/utils"
)

func etagOf(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// serveWithETag handles HTTP caching headers (ETag, Cache-Control).
// Returns 304 Not Modified if client's cache is valid.
func serveWithETag(w http.ResponseWriter, r *http.Request, it cache.Item, cacheControl string) {
	etag := it.ETag
	if etag == "" {
		etag = etagOf(it.Data)
	}
	w.Header().Set("Content-Type", it.ContentType)
	w.Header().Set("Cache-Control", cacheControl)
	w.Header().Set("ETag", `"`+etag+`"`)

	if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Write(it.Data)
}

// avatarURL is the picture shown for u: the Google photo when present,
// otherwise a generated initials avatar.
func avatarURL(u auth.User) string {
	if u.Picture != "" {
		return u.Picture
	}
	name := u.Name
	if name == "" {
		name = u.Email
	}
	return "/avatar/" + url.PathEscape(u.UID) + "?name=" + url.QueryEscape(name)
}

// Avatar draws an initials avatar for seed.
// GET /avatar/{seed}?name=&size=
func (a *App) Avatar(w http.ResponseWriter, r *http.Request) {
	seed := r.PathValue("seed")
	if seed == "" {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Avatar seed is missing.")
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = seed
	}
	if runes := []rune(name); len(runes) > 64 {
		name = string(runes[:64])
	}
	size := utils.ParseInt(r.URL.Query().Get("size"), generator.DefaultSize, generator.MinSize, generator.MaxSize)

	key := "avatar:" + seed + ":" + strconv.Itoa(size) + ":" + name
	it, err := a.Cache.GetOrLoad(key, func() (cache.Item, error) {
		data, err := generator.Avatar(name, seed, size)
		if err != nil {
			return cache.Item{}, err
		}
		return cache.Item{Data: data, ContentType: "image/png", ETag: etagOf(data)}, nil
	})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrImageProcessingFailed, "Failed to generate avatar image.")
		return
	}
	serveWithETag(w, r, it, "public, max-age=86400")
}
