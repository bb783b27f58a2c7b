package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/go-chi/chi/v5"
)

// decodeJSON body 格式錯誤一律回 ValidationCode
func decodeJSON(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return apperr.New(apperr.ValidationCode, "invalid request body")
	}
	return nil
}

func uintParam(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return 0, apperr.Newf(apperr.ValidationCode, "invalid %s %q", name, raw)
	}
	return uint(v), nil
}
