package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/models"
)

const maxBodyBytes = 1 << 20

var errBadBody = errors.New("invalid request body")

// isForm reports whether the request carries an HTML form body.
func isForm(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "application/x-www-form-urlencoded" || mt == "multipart/form-data"
}

// decodeFormState reads the option selection of one product. The body is
// either a JSON object of category to option ids or a form post where
// repeated keys carry several options.
func decodeFormState(w http.ResponseWriter, r *http.Request) (models.FormState, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if isForm(r) {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, fmt.Errorf("%w: %v", errBadBody, err)
		}
		form := make(models.FormState, len(r.PostForm))
		for k, v := range r.PostForm {
			form[k] = v
		}
		return form, nil
	}

	var form models.FormState
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadBody, err)
	}
	return form, nil
}

// decodeQuantity reads the raw value of {"value": ...} or a form field
// "value". The value is handed to the selector unparsed so that it applies
// its own rules; JSON numbers arrive as json.Number.
func decodeQuantity(w http.ResponseWriter, r *http.Request) (any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if isForm(r) {
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: %v", errBadBody, err)
		}
		if !r.PostForm.Has("value") {
			return nil, fmt.Errorf("%w: missing value", errBadBody)
		}
		return r.PostForm.Get("value"), nil
	}

	var req struct {
		Value *any `json:"value"`
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadBody, err)
	}
	if req.Value == nil {
		return nil, fmt.Errorf("%w: missing value", errBadBody)
	}
	return *req.Value, nil
}
