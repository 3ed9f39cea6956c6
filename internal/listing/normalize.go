// internal/listing/normalize.go
package listing

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"strings"
)

// Fallback values for fields a source leaves out.
const (
	DefaultLocation     = "Unknown location"
	DefaultPropertyType = "Property"
)

// FallbackPhotos are used, keyed by id, for listings without a photo.
var FallbackPhotos = []string{
	"https://images.unsplash.com/photo-1505691938895-1758d7feb511?auto=format&fit=crop&w=1400&q=80",
	"https://images.unsplash.com/photo-1505693416388-ac5ce068fe85?auto=format&fit=crop&w=1400&q=80",
	"https://images.unsplash.com/photo-1564013799919-ab600027ffc6?auto=format&fit=crop&w=1400&q=80",
	"https://images.unsplash.com/photo-1493809842364-78817add7ffb?auto=format&fit=crop&w=1400&q=80",
	"https://images.unsplash.com/photo-1512918728675-ed5a9ecdebfd?auto=format&fit=crop&w=1400&q=80",
	"https://images.unsplash.com/photo-1519710887729-7fcbf9f39f95?auto=format&fit=crop&w=1400&q=80",
	"https://images.unsplash.com/photo-1501183638710-841dd1904471?auto=format&fit=crop&w=1400&q=80",
	"https://images.unsplash.com/photo-1484154218962-a197022b5858?auto=format&fit=crop&w=1400&q=80",
}

// FieldAliases lists, per canonical field, the source keys that may carry it.
// Keys are tried left to right and the first non-null value wins.
type FieldAliases struct {
	ID           []string `mapstructure:"id"`
	Title        []string `mapstructure:"title"`
	Location     []string `mapstructure:"location"`
	PropertyType []string `mapstructure:"property_type"`
	Price        []string `mapstructure:"price"`
	Bedrooms     []string `mapstructure:"bedrooms"`
	Bathrooms    []string `mapstructure:"bathrooms"`
	Area         []string `mapstructure:"area"`
	PhotoURL     []string `mapstructure:"photo_url"`
}

// DefaultFieldAliases covers the backend API shape and the demo data shape.
var DefaultFieldAliases = FieldAliases{
	ID:           []string{"id", "property_id"},
	Title:        []string{"title", "name"},
	Location:     []string{"location", "address"},
	PropertyType: []string{"type", "property_type"},
	Price:        []string{"price", "harga"},
	Bedrooms:     []string{"beds", "bedrooms"},
	Bathrooms:    []string{"baths", "bathrooms"},
	Area:         []string{"area", "sqm", "size"},
	PhotoURL:     []string{"photoUrl", "image_url", "photo_url"},
}

// AliasesFromMap reads an alias table keyed by the mapstructure field names,
// as it appears in configuration. Unknown keys are ignored.
func AliasesFromMap(m map[string][]string) FieldAliases {
	var a FieldAliases
	for k, v := range m {
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "id":
			a.ID = v
		case "title":
			a.Title = v
		case "location":
			a.Location = v
		case "property_type":
			a.PropertyType = v
		case "price":
			a.Price = v
		case "bedrooms":
			a.Bedrooms = v
		case "bathrooms":
			a.Bathrooms = v
		case "area":
			a.Area = v
		case "photo_url":
			a.PhotoURL = v
		}
	}
	return a
}

// Merge returns a copy of a with every empty alias list taken from fallback.
func (a FieldAliases) Merge(fallback FieldAliases) FieldAliases {
	pick := func(v, d []string) []string {
		if len(v) == 0 {
			return d
		}
		return v
	}
	return FieldAliases{
		ID:           pick(a.ID, fallback.ID),
		Title:        pick(a.Title, fallback.Title),
		Location:     pick(a.Location, fallback.Location),
		PropertyType: pick(a.PropertyType, fallback.PropertyType),
		Price:        pick(a.Price, fallback.Price),
		Bedrooms:     pick(a.Bedrooms, fallback.Bedrooms),
		Bathrooms:    pick(a.Bathrooms, fallback.Bathrooms),
		Area:         pick(a.Area, fallback.Area),
		PhotoURL:     pick(a.PhotoURL, fallback.PhotoURL),
	}
}

// Normalizer maps raw records to canonical records. It holds no mutable state
// and is safe to share.
type Normalizer struct {
	aliases FieldAliases
	photos  []string
}

// NewNormalizer builds a normalizer. Missing aliases fall back to DefaultFieldAliases
// and an empty photo set falls back to FallbackPhotos.
func NewNormalizer(aliases FieldAliases, photos []string) *Normalizer {
	if len(photos) == 0 {
		photos = FallbackPhotos
	}
	return &Normalizer{
		aliases: aliases.Merge(DefaultFieldAliases),
		photos:  append([]string(nil), photos...),
	}
}

var defaultNormalizer = NewNormalizer(DefaultFieldAliases, FallbackPhotos)

// DefaultNormalizer returns the shared normalizer with the default configuration.
func DefaultNormalizer() *Normalizer { return defaultNormalizer }

// Normalize converts one raw record. index is its position in the source and
// supplies the id (index+1) when the record carries none. It never fails.
func (n *Normalizer) Normalize(raw Raw, index int) Record {
	id := n.resolveID(raw, index)

	return Record{
		ID:           id,
		Title:        n.text(raw, n.aliases.Title, "Property #"+id.String()),
		Location:     n.text(raw, n.aliases.Location, DefaultLocation),
		PropertyType: n.text(raw, n.aliases.PropertyType, DefaultPropertyType),
		Price:        n.number(raw, n.aliases.Price),
		Bedrooms:     int(math.Trunc(n.number(raw, n.aliases.Bedrooms))),
		Bathrooms:    int(math.Trunc(n.number(raw, n.aliases.Bathrooms))),
		Area:         n.number(raw, n.aliases.Area),
		PhotoURL:     n.text(raw, n.aliases.PhotoURL, n.fallbackPhoto(id)),
	}
}

// NormalizeAll converts a batch, assigning positional ids where needed.
func (n *Normalizer) NormalizeAll(raws []Raw) []Record {
	out := make([]Record, 0, len(raws))
	for i, raw := range raws {
		out = append(out, n.Normalize(raw, i))
	}
	return out
}

func (n *Normalizer) resolveID(raw Raw, index int) ID {
	v, ok := firstPresent(raw, n.aliases.ID, true)
	if ok {
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return ParseID(s)
			}
		default:
			if f, ok := toFloat(t); ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
				return IntID(int64(f))
			}
			if s, ok := scalarText(t); ok && s != "" {
				return StringID(s)
			}
		}
	}
	return IntID(int64(index) + 1)
}

func (n *Normalizer) text(raw Raw, keys []string, fallback string) string {
	v, ok := firstPresent(raw, keys, true)
	if !ok {
		return fallback
	}
	s, ok := scalarText(v)
	if !ok || s == "" {
		return fallback
	}
	return s
}

func (n *Normalizer) number(raw Raw, keys []string) float64 {
	v, ok := firstPresent(raw, keys, false)
	if !ok {
		return 0
	}
	f, ok := toFloat(v)
	if !ok || f < 0 {
		return 0
	}
	return f
}

func (n *Normalizer) fallbackPhoto(id ID) string {
	k := uint64(len(n.photos))
	if id.IsNumeric() {
		v := int64(id.Int())
		return n.photos[((v%int64(k))+int64(k))%int64(k)]
	}
	if v := id.Int(); v != 0 && v == math.Trunc(v) {
		return n.photos[((int64(v)%int64(k))+int64(k))%int64(k)]
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(id.String()))
	return n.photos[uint64(h.Sum32())%k]
}

// firstPresent returns the value of the first key that holds a non-null value.
// With skipBlank, blank strings count as null so display fields never come out
// empty. Numeric fields keep a blank string, which then parses to zero.
func firstPresent(raw Raw, keys []string, skipBlank bool) (interface{}, bool) {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); skipBlank && isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func scalarText(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, bool:
		return fmt.Sprint(t), true
	default:
		return "", false
	}
}

// toFloat coerces numbers and numeric strings. NaN and infinities are rejected.
func toFloat(v interface{}) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int8:
		f = float64(t)
	case int16:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint8:
		f = float64(t)
	case uint16:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
