package validation

import (
	"net/url"

	"mediaTracker/tracker/models"
	"mediaTracker/tracker/repository"
)

// ParseFilter reads the optional "type" and "status" query parameters.
func ParseFilter(q url.Values) (repository.Filter, error) {
	var f repository.Filter

	if v := q.Get("type"); v != "" {
		typ, err := models.ParseTaskType(v)
		if err != nil {
			return repository.Filter{}, ErrInvalidTaskType
		}
		f.Type = &typ
	}

	if v := q.Get("status"); v != "" {
		status, err := models.ParseTaskStatus(v)
		if err != nil {
			return repository.Filter{}, ErrInvalidStatus
		}
		f.Status = &status
	}

	return f, nil
}
