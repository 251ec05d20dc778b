package config

import "github.com/san-kum/driveline/internal/control"

// Presets are named tuning profiles for common setups.
var Presets = map[string]*Profile{
	"demo": DefaultProfile(),
	"precise": {
		Odom: OdomConfig{TPU: DefaultTPU},
		Move: MotionConfig{
			Exit: 0.5, Speed: 50, Lead: DefaultLead,
			Lin: control.Gains{Kp: 4, Ki: 0.1, Kd: 25},
			Ang: control.Gains{Kp: 35, Ki: 0, Kd: 120},
		},
		Turn: MotionConfig{
			Exit: 1.0, Speed: 40,
			Ang: control.Gains{Kp: 35, Ki: 0.2, Kd: 140},
		},
		Defaults: DefaultsConfig{Accel: 200},
	},
	"aggressive": {
		Odom: OdomConfig{TPU: DefaultTPU},
		Move: MotionConfig{
			Exit: 2.0, Speed: 100, Lead: 0.5,
			Lin: control.Gains{Kp: 7, Ki: 0, Kd: 15},
			Ang: control.Gains{Kp: 50, Ki: 0, Kd: 80},
		},
		Turn: MotionConfig{
			Exit: 3.0, Speed: 90,
			Ang: control.Gains{Kp: 50, Ki: 0, Kd: 100},
		},
		Defaults: DefaultsConfig{Accel: 600},
	},
}

func GetPreset(name string) *Profile {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
