// Package geofence проверяет, находится ли точка внутри круглого периметра.
package geofence

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusMeters: средний радиус Земли для формулы гаверсинуса
const EarthRadiusMeters = 6371000.0

var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrInvalidRadius      = errors.New("radius must be positive")
)

// Point: координаты в градусах
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate проверяет диапазоны широты и долготы
func (p Point) Validate() error {
	if math.IsNaN(p.Latitude) || p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidCoordinates, p.Latitude)
	}
	if math.IsNaN(p.Longitude) || p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidCoordinates, p.Longitude)
	}
	return nil
}

// Perimeter: круг с центром (Latitude, Longitude) и радиусом в метрах
type Perimeter struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    float64 `json:"radius"`
}

// DefaultPerimeter: центр Лондона, 2 км
var DefaultPerimeter = Perimeter{Latitude: 51.5074, Longitude: -0.1278, Radius: 2000}

// Center возвращает центр периметра
func (p Perimeter) Center() Point {
	return Point{Latitude: p.Latitude, Longitude: p.Longitude}
}

// Validate проверяет центр и радиус
func (p Perimeter) Validate() error {
	if err := p.Center().Validate(); err != nil {
		return err
	}
	if math.IsNaN(p.Radius) || p.Radius <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidRadius, p.Radius)
	}
	return nil
}

// Distance: расстояние по дуге большого круга (гаверсинус) в метрах
func Distance(a, b Point) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// округление у антиподов может вывести h за [0, 1]
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// IsWithinPerimeter: true, если расстояние до центра не больше радиуса.
// Граница считается внутренней.
func IsWithinPerimeter(point Point, perimeter Perimeter) bool {
	return Distance(point, perimeter.Center()) <= perimeter.Radius
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
