package rest

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/eslsoft/depictor/internal/adapter/mapping"
	"github.com/eslsoft/depictor/internal/entity"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	status, body := mapping.ToHTTPError(err)
	writeJSON(w, status, body)
}

// decodeInput fills dst from a JSON body or from form values keyed by the json tags of dst.
// Only string, bool and integer fields are read from forms.
func decodeInput(r *http.Request, dst any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return entity.NewValidationError("body", "invalid JSON: %v", err)
		}
		return nil
	}

	if err := r.ParseForm(); err != nil {
		return entity.NewValidationError("body", "invalid form: %v", err)
	}
	v := reflect.ValueOf(dst).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := strings.Split(t.Field(i).Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		raw, ok := r.Form[name]
		if !ok || len(raw) == 0 {
			continue
		}
		field := v.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(raw[0])
		case reflect.Bool:
			b, err := strconv.ParseBool(raw[0])
			if err != nil {
				return entity.NewValidationError(name, "%q is not a boolean", raw[0])
			}
			field.SetBool(b)
		case reflect.Int, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(raw[0], 10, 64)
			if err != nil {
				return entity.NewValidationError(name, "%q is not a number", raw[0])
			}
			field.SetInt(n)
		default:
			return fmt.Errorf("decode form: unsupported field kind %s", field.Kind())
		}
	}
	return nil
}

// languages reads the caller's language preferences from uselang and Accept-Language.
func languages(r *http.Request) entity.Languages {
	return entity.ParseLanguages(r.URL.Query()["uselang"], r.Header.Get("Accept-Language"))
}

func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

func queryPage(r *http.Request) int32 {
	page, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 32)
	if err != nil || page < 1 {
		return 1
	}
	return int32(page)
}
