// internal/listing/demo.go
package listing

import "fmt"

// DemoSize is the number of records served when no source is reachable.
const DemoSize = 18

var demoLocations = []string{"Jakarta", "Bali", "Tangerang", "Bandung"}

// DemoRaw returns n demo listings in the raw shape a backend would send.
func DemoRaw(n int) []Raw {
	out := make([]Raw, 0, max(n, 0))
	for i := 0; i < n; i++ {
		propertyType := "House"
		if i%2 == 1 {
			propertyType = "Apartment"
		}
		out = append(out, Raw{
			"id":       i + 1,
			"title":    fmt.Sprintf("Modern Sunset Villa %d", i+1),
			"location": demoLocations[i%len(demoLocations)],
			"price":    650000000 + i*125000000,
			"type":     propertyType,
			"beds":     1 + i%5,
			"baths":    1 + i%3,
			"area":     60 + (i%7)*25,
		})
	}
	return out
}
