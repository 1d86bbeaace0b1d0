package exoplanetctl

import (
	"fmt"
	"math"
	"strconv"
)

// optionalString distinguishes an unset flag from one set to "".
type optionalString struct {
	value *string
}

func (o *optionalString) String() string {
	if o == nil || o.value == nil {
		return ""
	}
	return *o.value
}

func (o *optionalString) Set(raw string) error {
	o.value = &raw
	return nil
}

type optionalInt struct {
	value *int
}

func (o *optionalInt) String() string {
	if o == nil || o.value == nil {
		return ""
	}
	return strconv.Itoa(*o.value)
}

func (o *optionalInt) Set(raw string) error {
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return err
	}
	o.value = &parsed
	return nil
}

// boundFlag writes a parsed float into one side of a query.Range.
type boundFlag struct {
	target **float64
}

func (b boundFlag) String() string {
	if b.target == nil || *b.target == nil {
		return ""
	}
	return strconv.FormatFloat(**b.target, 'g', -1, 64)
}

func (b boundFlag) Set(raw string) error {
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return err
	}
	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return fmt.Errorf("bound must be finite, got %s", raw)
	}
	*b.target = &parsed
	return nil
}
