package transport

import (
	"encoding/json"

	"github.com/jrsteele09/go-ordercloud/apierror"
	"github.com/pkg/errors"
)

// AsError returns the typed error for a failed result, or nil for KindOK.
//   - KindStatus: *apierror.Error
//   - KindCancelled: *CancellationError
//   - KindNetwork: the underlying error, unmodified
func (r *Result) AsError() error {
	switch r.Kind {
	case KindOK:
		return nil
	case KindStatus:
		return apierror.FromResponse(r.Request, r.Response, r.Body)
	case KindCancelled, KindNetwork:
		return r.Err
	}
	return errors.Errorf("unknown result kind %d", r.Kind)
}

// Decode unmarshals a successful JSON body into v. Empty bodies and a nil v
// are accepted.
func (r *Result) Decode(v any) error {
	if err := r.AsError(); err != nil {
		return err
	}
	if v == nil || len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.Wrap(err, "Result.Decode")
	}
	return nil
}
