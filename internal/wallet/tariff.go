// AngelaMos | 2026
// tariff.go

package wallet

const (
	LevelTrainee = "trainee"
	LevelJunior  = "junior"
	LevelSenior  = "senior"
	LevelExpert  = "expert"
	LevelMaster  = "master"
)

// Tariff is one row of the job-level table.
type Tariff struct {
	Level              string `json:"level"`
	PerTaskReward      int64  `json:"perTaskEarning"`
	DailyTaskQuota     int    `json:"dailyTaskLimit"`
	RequiredInvestment int64  `json:"requiredInvestment"`
}

var levels = []Tariff{
	{Level: LevelTrainee, PerTaskReward: 500, DailyTaskQuota: 5, RequiredInvestment: 0},
	{Level: LevelJunior, PerTaskReward: 700, DailyTaskQuota: 10, RequiredInvestment: 100000},
	{Level: LevelSenior, PerTaskReward: 1000, DailyTaskQuota: 15, RequiredInvestment: 250000},
	{Level: LevelExpert, PerTaskReward: 1500, DailyTaskQuota: 20, RequiredInvestment: 500000},
	{Level: LevelMaster, PerTaskReward: 2500, DailyTaskQuota: 30, RequiredInvestment: 1000000},
}

// Levels returns a copy of the table ordered from lowest to highest tier.
func Levels() []Tariff {
	out := make([]Tariff, len(levels))
	copy(out, levels)
	return out
}

func Lookup(level string) (Tariff, bool) {
	for _, t := range levels {
		if t.Level == level {
			return t, true
		}
	}
	return Tariff{}, false
}

// TariffFor falls back to trainee for unknown or empty levels.
func TariffFor(level string) Tariff {
	if t, ok := Lookup(level); ok {
		return t
	}
	return levels[0]
}
