// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/duka/config"
	"github.com/shashiranjanraj/duka/pkg/validate"
)

// ErrTooLarge is returned when the body exceeds MAX_BODY_BYTES.
var ErrTooLarge = errors.New("request body too large")

func maxBodyBytes() int64 {
	n, err := strconv.ParseInt(config.Get("MAX_BODY_BYTES", "1048576"), 10, 64)
	if err != nil || n <= 0 {
		return 1 << 20
	}
	return n
}

// JSON decodes r.Body as JSON into dest and runs validation.
// An empty body leaves dest untouched so DTO defaults apply.
// Returns (errs, nil) when there are validation failures and (nil, err)
// when the body is malformed or too large.
func JSON(r *http.Request, dest interface{}) (errs map[string]string, err error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())

	if err = json.NewDecoder(r.Body).Decode(dest); err != nil && !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w (max %d bytes)", ErrTooLarge, maxErr.Limit)
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	return check(dest)
}

// Form fills dest from an urlencoded or multipart form using `form` tags
// on string, int and bool fields, then runs validation. maxMemory bounds
// multipart parsing; 0 means 32 MB.
func Form(r *http.Request, dest interface{}, maxMemory int64) (map[string]string, error) {
	if maxMemory <= 0 {
		maxMemory = 32 << 20
	}
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w (max %d bytes)", ErrTooLarge, maxErr.Limit)
		}
		return nil, fmt.Errorf("invalid form: %w", err)
	}

	if errs := fill(dest, r.Form); len(errs) > 0 {
		return errs, nil
	}
	return check(dest)
}

func check(dest interface{}) (map[string]string, error) {
	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}
