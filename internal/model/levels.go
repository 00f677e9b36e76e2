package model

import "errors"

// StaticLevels are the fixed regulatory levels of the reservoir.
// Units:
// - NRL: m (normal retaining level, the maximum regulated headwater mark)
// - Dead: m (minimum allowed headwater mark)
// - InstalledCapacity: MW (hard ceiling on generated power)
type StaticLevels struct {
	NRL               float64
	Dead              float64
	InstalledCapacity float64
}

func NewStaticLevels(nrl, dead, installedCapacity float64) (StaticLevels, error) {
	l := StaticLevels{NRL: nrl, Dead: dead, InstalledCapacity: installedCapacity}
	if err := l.Validate(); err != nil {
		return StaticLevels{}, err
	}
	return l, nil
}

func (l StaticLevels) Validate() error {
	if l.Dead < 0 {
		return errors.New("Dead level must be >= 0")
	}
	if l.NRL <= l.Dead {
		return errors.New("NRL must be above the dead level")
	}
	if l.InstalledCapacity <= 0 {
		return errors.New("InstalledCapacity must be > 0")
	}
	return nil
}
