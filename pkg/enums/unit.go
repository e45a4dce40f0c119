package enums

import "fmt"

// Unit is the measure a grocery item is sold by.
type Unit string

const (
	UnitEach   Unit = "each"
	UnitLb     Unit = "lb"
	UnitOz     Unit = "oz"
	UnitKg     Unit = "kg"
	UnitG      Unit = "g"
	UnitL      Unit = "l"
	UnitMl     Unit = "ml"
	UnitGallon Unit = "gal"
	UnitDozen  Unit = "dozen"
	UnitPack   Unit = "pack"
)

var validUnits = []Unit{
	UnitEach,
	UnitLb,
	UnitOz,
	UnitKg,
	UnitG,
	UnitL,
	UnitMl,
	UnitGallon,
	UnitDozen,
	UnitPack,
}

func (u Unit) String() string {
	return string(u)
}

func (u Unit) IsValid() bool {
	for _, candidate := range validUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

func ParseUnit(value string) (Unit, error) {
	for _, candidate := range validUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid unit %q", value)
}

func Units() []Unit {
	return append([]Unit(nil), validUnits...)
}
