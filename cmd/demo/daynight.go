package main

import (
	"fmt"

	"github.com/chewxy/math32"

	"terrain-renderer/entities"
	"terrain-renderer/math"
)

// sunDistance keeps the light far enough away to act as a directional sun.
const sunDistance = 50000

// dayPalette holds the sky and light colours for one key time of day.
type dayPalette struct {
	t   float32 // normalised time 0..1
	sky math.Vec3
	sun math.Vec3
}

// palettes are ordered by t and wrap (0 == 1).
var palettes = []dayPalette{
	{t: 0.00, sky: math.NewVec3(0.58, 0.75, 0.95), sun: math.NewVec3(1.00, 0.98, 0.92)}, // noon
	{t: 0.22, sky: math.NewVec3(0.90, 0.52, 0.18), sun: math.NewVec3(0.90, 0.58, 0.22)}, // golden hour
	{t: 0.30, sky: math.NewVec3(0.35, 0.18, 0.22), sun: math.NewVec3(0.18, 0.10, 0.14)}, // dusk
	{t: 0.50, sky: math.NewVec3(0.03, 0.03, 0.06), sun: math.NewVec3(0.05, 0.05, 0.08)}, // midnight
	{t: 0.70, sky: math.NewVec3(0.30, 0.15, 0.20), sun: math.NewVec3(0.15, 0.08, 0.12)}, // pre-dawn
	{t: 0.78, sky: math.NewVec3(0.75, 0.40, 0.20), sun: math.NewVec3(0.70, 0.42, 0.20)}, // sunrise
}

// DayNight drives the animated day/night cycle.
type DayNight struct {
	Time   float32 // 0..1: 0=noon, 0.25=sunset, 0.5=midnight, 0.75=sunrise
	Length float32 // full-cycle duration in seconds
	Active bool    // auto-advance when true
}

// NewDayNight starts at start (0..1). A zero length gives an inactive cycle.
func NewDayNight(length, start float32) *DayNight {
	return &DayNight{
		Time:   start - math32.Floor(start),
		Length: length,
		Active: length > 0,
	}
}

func (dn *DayNight) Update(dt float32) {
	if !dn.Active {
		return
	}
	dn.Time += dt / dn.Length
	dn.Time -= math32.Floor(dn.Time)
}

func lerp(a, b math.Vec3, t float32) math.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// samplePalette interpolates between the two keyframes around t.
func samplePalette(t float32) dayPalette {
	n := len(palettes)
	for i := range palettes {
		a, b := palettes[i], palettes[(i+1)%n]
		ta, tb := a.t, b.t
		if i == n-1 {
			tb = 1
		}
		if t < ta || t >= tb {
			continue
		}
		local := (t - ta) / (tb - ta)
		return dayPalette{t: t, sky: lerp(a.sky, b.sky, local), sun: lerp(a.sun, b.sun, local)}
	}
	return palettes[0]
}

// sunPosition circles the sun through the XY plane, overhead at noon and
// below the ground at midnight.
func sunPosition(t float32) math.Vec3 {
	angle := t * 2 * math32.Pi
	dir := math.NewVec3(math32.Sin(angle), math32.Cos(angle), 0.35).Normalize()
	return dir.Mul(sunDistance)
}

// Apply moves and tints the light for the current time and returns the
// matching sky colour.
func (dn *DayNight) Apply(light *entities.Light) math.Vec3 {
	p := samplePalette(dn.Time)
	light.Position = sunPosition(dn.Time)
	light.Colour = p.sun
	return p.sky
}

// TimeOfDayStr returns a human-readable time label.
func (dn *DayNight) TimeOfDayStr() string {
	hours := dn.Time*24 + 12
	h := int(hours) % 24
	m := int((hours - math32.Floor(hours)) * 60)
	period := "AM"
	displayH := h
	switch {
	case h == 0:
		displayH = 12
	case h == 12:
		period = "PM"
	case h > 12:
		displayH = h - 12
		period = "PM"
	}
	return fmt.Sprintf("%02d:%02d %s", displayH, m, period)
}
