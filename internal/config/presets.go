package config

import (
	"sort"
	"time"
)

type Preset struct {
	Description string
	Simulation  SimulationConfig
}

var Presets = map[string]Preset{
	"default": {
		Description: "64 个串行任务对 64 条并行通道，8 秒截止",
		Simulation:  defaultSimulation(),
	},
	// One percent per 4 ms frame: the serial quota needs about 26 s, so the
	// deadline always cuts the run short.
	"classic": {
		Description: "逐帧推进的串行核心，总是被截止时间强制完成",
		Simulation: SimulationConfig{
			Tasks: 64, Lanes: 64,
			SerialTick: 4 * time.Millisecond, SerialTasksPerSecond: 2.5,
			ParallelTick: 16 * time.Millisecond, ParallelBaseStep: 0.5, ParallelJitter: 1.0,
			Deadline: 8 * time.Second,
		},
	},
	"quick": {
		Description: "16 个任务的短演示，两侧都能自然完成",
		Simulation: SimulationConfig{
			Tasks: 16, Lanes: 16,
			SerialTick: 16 * time.Millisecond, SerialTasksPerSecond: 12,
			ParallelTick: 16 * time.Millisecond, ParallelBaseStep: 0.5, ParallelJitter: 1.0,
			Deadline: 3 * time.Second,
		},
	},
}

func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return &p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
