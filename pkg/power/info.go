package power

import (
	"github.com/distatus/battery"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// BatteryInfo is a snapshot of one battery as reported by the OS.
// Units:
// - Current, Full, Design: mWh
// - ChargeRate: mW (negative when discharging)
// - Voltage, DesignVoltage: V
type BatteryInfo struct {
	Index         int     `json:"index"`
	State         string  `json:"state"`
	Current       float64 `json:"current"`
	Full          float64 `json:"full"`
	Design        float64 `json:"design"`
	ChargeRate    float64 `json:"chargeRate"`
	Voltage       float64 `json:"voltage"`
	DesignVoltage float64 `json:"designVoltage"`
}

// Health is the full capacity as a percentage of the design capacity.
func (b BatteryInfo) Health() float64 {
	if b.Design == 0 {
		return 0
	}
	return b.Full / b.Design * 100
}

var getAll = battery.GetAll

// Batteries returns every battery the OS reports. Batteries that could only
// be read partially are skipped; an error is returned only when none are
// left.
func Batteries() ([]BatteryInfo, error) {
	batteries, err := getAll()
	errs, partial := err.(battery.Errors)
	if err != nil && !partial {
		return nil, pkgerrors.Wrapf(err, "failed to list batteries")
	}

	var ret []BatteryInfo
	for i, bat := range batteries {
		if partial && errs[i] != nil {
			logrus.WithField("index", i).Debugf("skipping battery: %v", errs[i])
			continue
		}
		if bat == nil {
			continue
		}

		rate := bat.ChargeRate
		if bat.State == battery.Discharging {
			rate = -rate
		}

		ret = append(ret, BatteryInfo{
			Index:         i,
			State:         bat.State.String(),
			Current:       bat.Current,
			Full:          bat.Full,
			Design:        bat.Design,
			ChargeRate:    rate,
			Voltage:       bat.Voltage,
			DesignVoltage: bat.DesignVoltage,
		})
	}

	if len(ret) == 0 {
		return nil, pkgerrors.New("no batteries found")
	}

	return ret, nil
}
