package room

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hostelry/service-rooms/internal/domain"
)

// Field names a filterable room attribute.
type Field string

const (
	FieldPrice         Field = "price"
	FieldBeds          Field = "beds"
	FieldAvailableFrom Field = "available_from"
	FieldBooked        Field = "booked"
	FieldBookedBy      Field = "booked_by"
)

// Comparator is the relation a Condition checks.
type Comparator string

const (
	Gte Comparator = ">="
	Lte Comparator = "<="
	Eq  Comparator = "="
)

// Condition is a single {field, comparator, value} constraint. Value holds a
// float64 for price, uint64 for beds, time.Time for available_from, bool for
// booked and uuid.UUID for booked_by.
type Condition struct {
	Field      Field
	Comparator Comparator
	Value      any
}

// Filter is the conjunction of its conditions. The zero value matches every room.
type Filter struct {
	conditions []Condition
}

// NewFilter creates a Filter from the given conditions.
func NewFilter(conditions ...Condition) Filter {
	return Filter{conditions: append([]Condition(nil), conditions...)}
}

// Conditions returns a copy of the filter's conditions in evaluation order.
func (f Filter) Conditions() []Condition {
	return append([]Condition(nil), f.conditions...)
}

// IsEmpty reports whether the filter places no constraint.
func (f Filter) IsEmpty() bool { return len(f.conditions) == 0 }

// And returns a new filter with the extra conditions appended.
func (f Filter) And(conditions ...Condition) Filter {
	out := make([]Condition, 0, len(f.conditions)+len(conditions))
	out = append(out, f.conditions...)
	out = append(out, conditions...)
	return Filter{conditions: out}
}

// HeldBy returns a filter selecting rooms booked by the given identity.
func HeldBy(identity domain.Identity) Filter {
	return NewFilter(Condition{Field: FieldBookedBy, Comparator: Eq, Value: identity.ID})
}

// Matches folds all conditions into a single predicate over the room.
func (f Filter) Matches(r *Room) bool {
	for _, c := range f.conditions {
		if !c.Matches(r) {
			return false
		}
	}
	return true
}

// Matches evaluates the condition against a room. Conditions with a value of
// the wrong type never match.
func (c Condition) Matches(r *Room) bool {
	switch c.Field {
	case FieldPrice:
		v, ok := c.Value.(float64)
		return ok && compareOrdered(r.Price(), v, c.Comparator)
	case FieldBeds:
		v, ok := c.Value.(uint64)
		return ok && compareOrdered(uint64(r.Beds()), v, c.Comparator)
	case FieldAvailableFrom:
		v, ok := c.Value.(time.Time)
		return ok && compareOrdered(r.AvailableFrom().UnixNano(), v.UnixNano(), c.Comparator)
	case FieldBooked:
		v, ok := c.Value.(bool)
		return ok && c.Comparator == Eq && r.Booked() == v
	case FieldBookedBy:
		v, ok := c.Value.(uuid.UUID)
		if !ok || c.Comparator != Eq {
			return false
		}
		holder, booked := r.State().Holder()
		return booked && holder.ID == v
	default:
		return false
	}
}

func compareOrdered[T float64 | uint64 | int64](got, want T, cmp Comparator) bool {
	switch cmp {
	case Gte:
		return got >= want
	case Lte:
		return got <= want
	case Eq:
		return got == want
	default:
		return false
	}
}

// Query parameter keys understood by ParseFilter.
const (
	ParamPriceFrom     = "price_from"
	ParamPriceTo       = "price_to"
	ParamBedsFrom      = "beds_from"
	ParamBedsTo        = "beds_to"
	ParamAvailableFrom = "available_from"
	ParamAvailableTo   = "available_to"
	ParamBooked        = "booked"
	ParamVacant        = "vacant"
)

// InvalidFilterParameterError identifies a query parameter that could not be parsed.
type InvalidFilterParameterError struct {
	Key   string
	Value string
	Err   error
}

func (e *InvalidFilterParameterError) Error() string {
	return fmt.Sprintf("invalid value %q for filter parameter %s", e.Value, e.Key)
}

func (e *InvalidFilterParameterError) Unwrap() []error {
	if e.Err == nil {
		return []error{domain.ErrInvalidFilterParameter}
	}
	return []error{domain.ErrInvalidFilterParameter, e.Err}
}

type boundParam struct {
	key        string
	field      Field
	comparator Comparator
	parse      func(string) (any, error)
}

// boundParams is the fixed order in which range parameters are applied.
var boundParams = []boundParam{
	{key: ParamPriceFrom, field: FieldPrice, comparator: Gte, parse: parsePrice},
	{key: ParamPriceTo, field: FieldPrice, comparator: Lte, parse: parsePrice},
	{key: ParamBedsFrom, field: FieldBeds, comparator: Gte, parse: parseBeds},
	{key: ParamBedsTo, field: FieldBeds, comparator: Lte, parse: parseBeds},
	{key: ParamAvailableFrom, field: FieldAvailableFrom, comparator: Gte, parse: parseTimestamp},
	{key: ParamAvailableTo, field: FieldAvailableFrom, comparator: Lte, parse: parseTimestamp},
}

// ParseFilter turns optional query parameters into a Filter. Missing or empty
// bounds place no constraint. booked and vacant are presence flags: exactly
// one of them restricts the listing to booked or vacant rooms, both or
// neither leave it unrestricted.
func ParseFilter(params map[string][]string) (Filter, error) {
	conditions := make([]Condition, 0, len(boundParams)+1)

	for _, p := range boundParams {
		raw := lastValue(params, p.key)
		if raw == "" {
			continue
		}
		v, err := p.parse(raw)
		if err != nil {
			return Filter{}, &InvalidFilterParameterError{Key: p.key, Value: raw, Err: err}
		}
		conditions = append(conditions, Condition{Field: p.field, Comparator: p.comparator, Value: v})
	}

	_, booked := params[ParamBooked]
	_, vacant := params[ParamVacant]
	if booked != vacant {
		conditions = append(conditions, Condition{Field: FieldBooked, Comparator: Eq, Value: booked})
	}

	return Filter{conditions: conditions}, nil
}

// lastValue mirrors form-decoding conventions where a repeated key yields its last value.
func lastValue(params map[string][]string, key string) string {
	values := params[key]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[len(values)-1])
}

func parsePrice(raw string) (any, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("price must be finite")
	}
	return v, nil
}

func parseBeds(raw string) (any, error) {
	return strconv.ParseUint(raw, 10, 32)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTimestamp accepts RFC 3339 and the common ISO-8601 variants; values
// without a zone are taken as UTC.
func parseTimestamp(raw string) (any, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return nil, fmt.Errorf("expected an ISO-8601 timestamp")
}
