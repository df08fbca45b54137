package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/ferortega/cf4j-sub001/knn"
	"github.com/ferortega/cf4j-sub001/similarity"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("metric", func(fl validator.FieldLevel) bool {
			_, err := similarity.ByName(fl.Field().String())
			return err == nil
		})
		_ = validate.RegisterValidation("aggregation", func(fl validator.FieldLevel) bool {
			_, err := knn.ParseAggregation(fl.Field().String())
			return err == nil
		})
		validate.RegisterStructValidation(validateSnapshot, SnapshotConfig{})
	})
	return validate
}

// validateSnapshot checks the settings required by the selected backend.
func validateSnapshot(sl validator.StructLevel) {
	c := sl.Current().Interface().(SnapshotConfig)
	switch c.Backend {
	case "local":
		if c.Dir == "" {
			sl.ReportError(c.Dir, "dir", "Dir", "required_for_backend", c.Backend)
		}
	case "s3":
		if c.S3.Bucket == "" {
			sl.ReportError(c.S3.Bucket, "s3.bucket", "Bucket", "required_for_backend", c.Backend)
		}
	case "minio":
		if c.MinIO.Endpoint == "" {
			sl.ReportError(c.MinIO.Endpoint, "minio.endpoint", "Endpoint", "required_for_backend", c.Backend)
		}
		if c.MinIO.Bucket == "" {
			sl.ReportError(c.MinIO.Bucket, "minio.bucket", "Bucket", "required_for_backend", c.Backend)
		}
	}
}

// Validate checks c and reports every violation. The returned error wraps
// ErrInvalid.
func (c *Config) Validate() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	path := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return path + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s, got %v", path, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", path, fe.Param(), fe.Value())
	case "metric":
		return fmt.Sprintf("%s: unknown metric %q (known: %s)", path, fe.Value(), strings.Join(similarity.Names(), ", "))
	case "aggregation":
		return fmt.Sprintf("%s: unknown aggregation %q", path, fe.Value())
	case "required_for_backend":
		return fmt.Sprintf("%s is required for backend %s", path, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", path, fe.Tag())
	}
}

// fieldPath strips the root type from a validator namespace, leaving the
// koanf key path ("Config.recommender.k" becomes "recommender.k").
func fieldPath(ns string) string {
	_, path, ok := strings.Cut(ns, ".")
	if !ok {
		return ns
	}
	return path
}
