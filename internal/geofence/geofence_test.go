package geofence

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var london = Perimeter{Latitude: 51.5074, Longitude: -0.1278, Radius: 2000}

func TestDistance(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Point
		want      float64
		tolerance float64
	}{
		{
			name: "same point",
			a:    Point{51.5074, -0.1278},
			b:    Point{51.5074, -0.1278},
			want: 0,
		},
		{
			name:      "0.1 degree of latitude",
			a:         Point{51.5074, -0.1278},
			b:         Point{51.6074, -0.1278},
			want:      11119.5,
			tolerance: 1,
		},
		{
			name:      "london to paris",
			a:         Point{51.5074, -0.1278},
			b:         Point{48.8566, 2.3522},
			want:      343_500,
			tolerance: 1_000,
		},
		{
			name:      "antipodes",
			a:         Point{0, 0},
			b:         Point{0, 180},
			want:      math.Pi * EarthRadiusMeters,
			tolerance: 1e-3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Distance(tt.a, tt.b), tt.tolerance)
		})
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := Point{51.5, -0.12}
	b := Point{40.71, -74.0}
	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-6)
}

func TestIsWithinPerimeterLondon(t *testing.T) {
	center := Point{51.5074, -0.1278}
	assert.True(t, IsWithinPerimeter(center, london))
	assert.Equal(t, 0.0, Distance(center, london.Center()))

	north := Point{51.6074, -0.1278}
	assert.False(t, IsWithinPerimeter(north, london))
	assert.InDelta(t, 11_100, Distance(north, london.Center()), 50)
}

func TestIsWithinPerimeterBoundaryIsInside(t *testing.T) {
	points := []Point{
		{51.5164, -0.1278},
		{51.5074, -0.1000},
		{51.4900, -0.1500},
	}
	for _, p := range points {
		d := Distance(p, london.Center())
		onEdge := Perimeter{Latitude: london.Latitude, Longitude: london.Longitude, Radius: d}
		assert.True(t, IsWithinPerimeter(p, onEdge), "point %v at %.3fm", p, d)

		justShort := onEdge
		justShort.Radius = math.Nextafter(d, 0)
		assert.False(t, IsWithinPerimeter(p, justShort))
	}
}

func TestIsWithinPerimeterMatchesDistance(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		p := Perimeter{
			Latitude:  rng.Float64()*180 - 90,
			Longitude: rng.Float64()*360 - 180,
			Radius:    1 + rng.Float64()*50_000,
		}
		x := Point{
			Latitude:  clamp(p.Latitude+(rng.Float64()-0.5), -90, 90),
			Longitude: clamp(p.Longitude+(rng.Float64()-0.5), -180, 180),
		}
		want := Distance(x, p.Center()) <= p.Radius
		require.Equal(t, want, IsWithinPerimeter(x, p), "iteration %d", i)
	}
}

func TestGarbageInDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = IsWithinPerimeter(Point{1000, -999}, Perimeter{Latitude: 500, Longitude: 500, Radius: -1})
	})
}

func TestPointValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Point
		wantErr bool
	}{
		{"valid", Point{51.5, -0.12}, false},
		{"poles and dateline", Point{90, 180}, false},
		{"negative bounds", Point{-90, -180}, false},
		{"latitude too big", Point{90.0001, 0}, true},
		{"longitude too small", Point{0, -180.5}, true},
		{"nan", Point{math.NaN(), 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCoordinates)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPerimeterValidate(t *testing.T) {
	assert.NoError(t, DefaultPerimeter.Validate())
	assert.ErrorIs(t, Perimeter{Latitude: 0, Longitude: 0, Radius: 0}.Validate(), ErrInvalidRadius)
	assert.ErrorIs(t, Perimeter{Latitude: 0, Longitude: 0, Radius: -5}.Validate(), ErrInvalidRadius)
	assert.ErrorIs(t, Perimeter{Latitude: 95, Longitude: 0, Radius: 10}.Validate(), ErrInvalidCoordinates)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
