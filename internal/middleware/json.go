package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/vigilance-driver/vigilance-go/internal/model"
)

const jsonObjectKey contextKey = "jsonObject"

// DecodeJSONObject returns middleware that requires the request body to be a
// single JSON object of at most maxBytes. The decoded object is stored in the
// request context; numbers are kept as json.Number so they round-trip exactly.
func DecodeJSONObject(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

			obj, err := decodeObject(r.Body)
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
					return
				}
				writeJSONError(w, http.StatusBadRequest, "invalid request")
				return
			}

			ctx := context.WithValue(r.Context(), jsonObjectKey, obj)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

var errNotObject = errors.New("request body must be a JSON object")

func decodeObject(body io.Reader) (model.SessionRecord, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var obj model.SessionRecord
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errNotObject
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, errNotObject
	}

	return obj, nil
}

// JSONObjectFromContext returns the object decoded by DecodeJSONObject.
func JSONObjectFromContext(ctx context.Context) (model.SessionRecord, bool) {
	obj, ok := ctx.Value(jsonObjectKey).(model.SessionRecord)
	return obj, ok && obj != nil
}
