package ruleset

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// attackDef is the YAML file schema for one attack. Durations are Go duration
// strings (e.g. "1.2s"); yaml.v3 has no native time.Duration support.
type attackDef struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Telegraph   string  `yaml:"telegraph"`
	Execute     string  `yaml:"execute"`
	Recovery    string  `yaml:"recovery"`
	Radius      float64 `yaml:"radius"`
	Damage      int     `yaml:"damage"`
	MinPhase    int     `yaml:"min_phase"`
	FrontalOnly bool    `yaml:"frontal_only"`
}

func (d attackDef) build() (Attack, error) {
	telegraph, err := parseTuningDuration(fmt.Sprintf("attack %q telegraph", d.ID), d.Telegraph)
	if err != nil {
		return Attack{}, err
	}
	execute, err := parseTuningDuration(fmt.Sprintf("attack %q execute", d.ID), d.Execute)
	if err != nil {
		return Attack{}, err
	}
	recovery, err := parseTuningDuration(fmt.Sprintf("attack %q recovery", d.ID), d.Recovery)
	if err != nil {
		return Attack{}, err
	}
	return Attack{
		ID:          d.ID,
		Name:        d.Name,
		Telegraph:   telegraph,
		Execute:     execute,
		Recovery:    recovery,
		Radius:      d.Radius,
		Damage:      d.Damage,
		MinPhase:    Phase(d.MinPhase),
		FrontalOnly: d.FrontalOnly,
	}, nil
}

// phaseFileDef is the YAML file schema for one phase pacing entry.
type phaseFileDef struct {
	Phase       int     `yaml:"phase"`
	IdleMin     string  `yaml:"idle_min"`
	IdleMax     string  `yaml:"idle_max"`
	Speed       float64 `yaml:"speed"`
	EngageRange float64 `yaml:"engage_range"`
}

func (d phaseFileDef) build() (PhaseDef, error) {
	idleMin, err := parseTuningDuration(fmt.Sprintf("phase %d idle_min", d.Phase), d.IdleMin)
	if err != nil {
		return PhaseDef{}, err
	}
	idleMax, err := parseTuningDuration(fmt.Sprintf("phase %d idle_max", d.Phase), d.IdleMax)
	if err != nil {
		return PhaseDef{}, err
	}
	return PhaseDef{
		Phase:       Phase(d.Phase),
		IdleMin:     idleMin,
		IdleMax:     idleMax,
		Speed:       d.Speed,
		EngageRange: d.EngageRange,
	}, nil
}

// playerDef is the YAML file schema for the player section. All fields are
// optional; absent fields keep the base preset's value.
type playerDef struct {
	MaxHP          *int     `yaml:"max_hp"`
	AttackDamage   *int     `yaml:"attack_damage"`
	AttackCooldown *string  `yaml:"attack_cooldown"`
	AttackRange    *float64 `yaml:"attack_range"`
	InvulnWindow   *string  `yaml:"invuln_window"`
	HealAmount     *int     `yaml:"heal_amount"`
	RapidDamage    *int     `yaml:"rapid_damage"`
	RapidCooldown  *string  `yaml:"rapid_cooldown"`
	RapidDuration  *string  `yaml:"rapid_duration"`
}

func (d playerDef) apply(base PlayerTuning) (PlayerTuning, error) {
	out := base
	if d.MaxHP != nil {
		out.MaxHP = *d.MaxHP
	}
	if d.AttackDamage != nil {
		out.AttackDamage = *d.AttackDamage
	}
	if d.AttackCooldown != nil {
		v, err := parseTuningDuration("player.attack_cooldown", *d.AttackCooldown)
		if err != nil {
			return PlayerTuning{}, err
		}
		out.AttackCooldown = v
	}
	if d.AttackRange != nil {
		out.AttackRange = *d.AttackRange
	}
	if d.InvulnWindow != nil {
		v, err := parseTuningDuration("player.invuln_window", *d.InvulnWindow)
		if err != nil {
			return PlayerTuning{}, err
		}
		out.InvulnWindow = v
	}
	if d.HealAmount != nil {
		out.HealAmount = *d.HealAmount
	}
	if d.RapidDamage != nil {
		out.RapidDamage = *d.RapidDamage
	}
	if d.RapidCooldown != nil {
		v, err := parseTuningDuration("player.rapid_cooldown", *d.RapidCooldown)
		if err != nil {
			return PlayerTuning{}, err
		}
		out.RapidCooldown = v
	}
	if d.RapidDuration != nil {
		v, err := parseTuningDuration("player.rapid_duration", *d.RapidDuration)
		if err != nil {
			return PlayerTuning{}, err
		}
		out.RapidDuration = v
	}
	return out, nil
}

// bossDef is the YAML file schema for the boss section.
type bossDef struct {
	MaxHP          *int     `yaml:"max_hp"`
	TauntRange     *float64 `yaml:"taunt_range"`
	TauntDuration  *string  `yaml:"taunt_duration"`
	DyingDuration  *string  `yaml:"dying_duration"`
	FallbackAttack *string  `yaml:"fallback_attack"`
}

func (d bossDef) apply(base BossTuning) (BossTuning, error) {
	out := base
	if d.MaxHP != nil {
		out.MaxHP = *d.MaxHP
	}
	if d.TauntRange != nil {
		out.TauntRange = *d.TauntRange
	}
	if d.TauntDuration != nil {
		v, err := parseTuningDuration("boss.taunt_duration", *d.TauntDuration)
		if err != nil {
			return BossTuning{}, err
		}
		out.TauntDuration = v
	}
	if d.DyingDuration != nil {
		v, err := parseTuningDuration("boss.dying_duration", *d.DyingDuration)
		if err != nil {
			return BossTuning{}, err
		}
		out.DyingDuration = v
	}
	if d.FallbackAttack != nil {
		out.FallbackAttack = *d.FallbackAttack
	}
	return out, nil
}

// lootDef is the YAML file schema for the loot section.
type lootDef struct {
	IntervalMin *string  `yaml:"interval_min"`
	IntervalMax *string  `yaml:"interval_max"`
	PickupRange *float64 `yaml:"pickup_range"`
	TTL         *string  `yaml:"ttl"`
}

func (d lootDef) apply(base LootTuning) (LootTuning, error) {
	out := base
	if d.IntervalMin != nil {
		v, err := parseTuningDuration("loot.interval_min", *d.IntervalMin)
		if err != nil {
			return LootTuning{}, err
		}
		out.IntervalMin = v
	}
	if d.IntervalMax != nil {
		v, err := parseTuningDuration("loot.interval_max", *d.IntervalMax)
		if err != nil {
			return LootTuning{}, err
		}
		out.IntervalMax = v
	}
	if d.PickupRange != nil {
		out.PickupRange = *d.PickupRange
	}
	if d.TTL != nil {
		v, err := parseTuningDuration("loot.ttl", *d.TTL)
		if err != nil {
			return LootTuning{}, err
		}
		out.TTL = v
	}
	return out, nil
}

// pursuitDef is the YAML file schema for the pursuit section.
type pursuitDef struct {
	Duration        *string  `yaml:"duration"`
	CatchRadius     *float64 `yaml:"catch_radius"`
	TouchDamage     *int     `yaml:"touch_damage"`
	RetreatDuration *string  `yaml:"retreat_duration"`
	BaseSpeed       *float64 `yaml:"base_speed"`
	MaxSpeed        *float64 `yaml:"max_speed"`
}

func (d pursuitDef) apply(base PursuitTuning) (PursuitTuning, error) {
	out := base
	if d.Duration != nil {
		v, err := parseTuningDuration("pursuit.duration", *d.Duration)
		if err != nil {
			return PursuitTuning{}, err
		}
		out.Duration = v
	}
	if d.CatchRadius != nil {
		out.CatchRadius = *d.CatchRadius
	}
	if d.TouchDamage != nil {
		out.TouchDamage = *d.TouchDamage
	}
	if d.RetreatDuration != nil {
		v, err := parseTuningDuration("pursuit.retreat_duration", *d.RetreatDuration)
		if err != nil {
			return PursuitTuning{}, err
		}
		out.RetreatDuration = v
	}
	if d.BaseSpeed != nil {
		out.BaseSpeed = *d.BaseSpeed
	}
	if d.MaxSpeed != nil {
		out.MaxSpeed = *d.MaxSpeed
	}
	return out, nil
}

// tuningDef is the YAML file schema under the top-level "tuning" key. Attack
// and phase lists, when present, replace the base lists wholesale; scalar
// sections merge field by field.
type tuningDef struct {
	Attacks []attackDef    `yaml:"attacks"`
	Phases  []phaseFileDef `yaml:"phases"`
	Player  *playerDef     `yaml:"player"`
	Boss    *bossDef       `yaml:"boss"`
	Loot    *lootDef       `yaml:"loot"`
	Pursuit *pursuitDef    `yaml:"pursuit"`
}

// tuningFile wraps the YAML top-level key.
type tuningFile struct {
	Tuning *tuningDef `yaml:"tuning"`
}

func (d *tuningDef) apply(base Tuning) (Tuning, error) {
	out := base
	if len(d.Attacks) > 0 {
		attacks := make([]Attack, 0, len(d.Attacks))
		for _, a := range d.Attacks {
			built, err := a.build()
			if err != nil {
				return Tuning{}, err
			}
			attacks = append(attacks, built)
		}
		out.Attacks = attacks
	}
	if len(d.Phases) > 0 {
		phases := make([]PhaseDef, 0, len(d.Phases))
		for _, p := range d.Phases {
			built, err := p.build()
			if err != nil {
				return Tuning{}, err
			}
			phases = append(phases, built)
		}
		out.Phases = phases
	}
	var err error
	if d.Player != nil {
		if out.Player, err = d.Player.apply(out.Player); err != nil {
			return Tuning{}, err
		}
	}
	if d.Boss != nil {
		if out.Boss, err = d.Boss.apply(out.Boss); err != nil {
			return Tuning{}, err
		}
	}
	if d.Loot != nil {
		if out.Loot, err = d.Loot.apply(out.Loot); err != nil {
			return Tuning{}, err
		}
	}
	if d.Pursuit != nil {
		if out.Pursuit, err = d.Pursuit.apply(out.Pursuit); err != nil {
			return Tuning{}, err
		}
	}
	return out, nil
}

// LoadBytes parses one tuning YAML document and merges it over base.
//
// Precondition: data must be valid YAML with a top-level "tuning" key; unknown
// fields are rejected.
// Postcondition: the returned Tuning has passed Validate, or an error is
// returned and base is unchanged.
func LoadBytes(data []byte, base Tuning) (Tuning, error) {
	merged, err := mergeBytes(data, base)
	if err != nil {
		return Tuning{}, err
	}
	if err := merged.Validate(); err != nil {
		return Tuning{}, err
	}
	return merged, nil
}

// mergeBytes parses and applies one document without final validation, so
// directory loads can layer several files before checking the result.
func mergeBytes(data []byte, base Tuning) (Tuning, error) {
	var f tuningFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return Tuning{}, fmt.Errorf("parsing tuning YAML: %w", err)
	}
	if f.Tuning == nil {
		return Tuning{}, fmt.Errorf("tuning YAML missing top-level 'tuning' key")
	}
	return f.Tuning.apply(base)
}

// LoadDir reads every *.yaml file in dir in name order and merges each over
// the accumulated result, starting from base. Validation runs once on the
// final result, so a later file may repair an earlier file's overrides.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns base unchanged (and nil error) if dir holds no .yaml
// files; returns a validated Tuning otherwise.
func LoadDir(dir string, base Tuning) (Tuning, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Tuning{}, fmt.Errorf("reading tuning dir %q: %w", dir, err)
	}
	out := base
	loaded := false
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return Tuning{}, fmt.Errorf("reading %q: %w", path, err)
		}
		out, err = mergeBytes(data, out)
		if err != nil {
			return Tuning{}, fmt.Errorf("loading %q: %w", path, err)
		}
		loaded = true
	}
	if !loaded {
		return base, nil
	}
	if err := out.Validate(); err != nil {
		return Tuning{}, err
	}
	return out, nil
}

func parseTuningDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("%s: duration must not be empty", field)
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a valid duration: %w", field, s, err)
	}
	return d, nil
}
