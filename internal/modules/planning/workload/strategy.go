package workload

import (
	"fmt"
	"strings"

	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/tags"
)

// Strategy is the closed set of daily training decisions. Each variant
// renders its own generator instruction and user-facing message.
type Strategy interface {
	Name() string
	instruction() string
	userMessage() string
	isStrategy()
}

const (
	NameRest       = "REST"
	NameAvoidance  = "AVOIDANCE"
	NameRecovery   = "RECOVERY"
	NameSustain    = "SUSTAIN"
	NameProgress   = "PROGRESS"
	NameEfficiency = "EFFICIENCY"
)

// Rest is never chosen by Analyze; the orchestrator uses it for the late-night first plan.
type Rest struct{}

// Avoidance keeps all work away from the reported pain areas.
type Avoidance struct {
	Areas []string
}

type RecoveryCause int

const (
	RecoveryOverload RecoveryCause = iota // ACWR spike
	RecoveryStrain                        // yesterday was too hard and unfinished
)

type Recovery struct {
	Cause RecoveryCause
	ACWR  float64
}

type SustainCause int

const (
	SustainNewUser SustainCause = iota
	SustainSteady
	SustainVariety
)

type Sustain struct {
	Cause SustainCause
}

type ProgressSignal int

const (
	ProgressDetraining ProgressSignal = iota
	ProgressStrength
	ProgressEnergy
	ProgressEasy
)

type Progress struct {
	Signal ProgressSignal
}

type Efficiency struct {
	MaxMinutes int
}

func (Rest) isStrategy()       {}
func (Avoidance) isStrategy()  {}
func (Recovery) isStrategy()   {}
func (Sustain) isStrategy()    {}
func (Progress) isStrategy()   {}
func (Efficiency) isStrategy() {}

func (Rest) Name() string       { return NameRest }
func (Avoidance) Name() string  { return NameAvoidance }
func (Recovery) Name() string   { return NameRecovery }
func (Sustain) Name() string    { return NameSustain }
func (Progress) Name() string   { return NameProgress }
func (Efficiency) Name() string { return NameEfficiency }

func (Rest) instruction() string {
	return "Late first session. Prescribe rest tonight: light stretching and sleep preparation only, no training load."
}
func (Rest) userMessage() string {
	return "Welcome aboard! It's late, so tonight is about rest. Your first full plan arrives tomorrow."
}

func (a Avoidance) instruction() string {
	parts := a.areaNames()
	return fmt.Sprintf(
		"[HIGHEST PRIORITY] The user reports pain or discomfort in: %s. Do NOT schedule any movement that loads or involves the %s today. Train a complementary muscle group (e.g. upper body when the lower body hurts) or prescribe a low-intensity rehab session.",
		parts, parts)
}
func (a Avoidance) userMessage() string {
	return fmt.Sprintf("Got your %s discomfort report. Today's session avoids those areas so you can train safely.", a.areaNames())
}

func (a Avoidance) areaNames() string {
	names := make([]string, 0, len(a.Areas))
	for _, code := range a.Areas {
		names = append(names, tags.DisplayName(code))
	}
	return strings.Join(names, ", ")
}

func (r Recovery) instruction() string {
	if r.Cause == RecoveryOverload {
		return fmt.Sprintf(
			"[TREND WARNING] Short-term training load spiked (ACWR=%.1f). Today MUST be a deload day: cut training volume by about 40%% and focus on mobility and recovery.",
			r.ACWR)
	}
	return "The user was exhausted yesterday and did not finish the plan. Reduce reps per set or the total number of sets so the session is easier to complete."
}
func (r Recovery) userMessage() string {
	if r.Cause == RecoveryOverload {
		return "You've been pushing hard lately! We're easing off a little today to keep the progress sustainable."
	}
	return "Yesterday was tough. Today we dial it back a bit and let your body recharge."
}

func (s Sustain) instruction() string {
	switch s.Cause {
	case SustainNewUser:
		return "New user or no history. Generate a standard adaptation plan based on the profile."
	case SustainVariety:
		return "The user found training a bit boring. Change the exercise combination and introduce a new format (supersets, pyramid sets) to keep it fresh."
	default:
		return "The user is stable. Keep the current training rhythm; small changes in exercise order are fine."
	}
}
func (s Sustain) userMessage() string {
	switch s.Cause {
	case SustainNewUser:
		return "Let's start with a plan tuned to your profile."
	case SustainVariety:
		return "Switching things up to keep training fun!"
	default:
		return "Nice and steady. Keep it going!"
	}
}

func (p Progress) instruction() string {
	switch p.Signal {
	case ProgressDetraining:
		return "[TREND NOTE] Recent training load is low and the user is close to detraining. Increase today's intensity with progressive overload."
	case ProgressStrength:
		return "The user reports clear strength gains. Add 5-10% load on the main lifts, or add 1-2 working sets."
	case ProgressEnergy:
		return "The user is in a high-energy state. Raise the training intensity or try a more advanced movement variation."
	default:
		return "The user found training too easy. Add volume or weight on the main movements, or use a harder variation."
	}
}
func (p Progress) userMessage() string {
	switch p.Signal {
	case ProgressDetraining:
		return "Time to pick the pace back up a little."
	case ProgressStrength:
		return "Getting stronger! Let's add some weight to the main lifts today."
	case ProgressEnergy:
		return "You're on fire! Today you can take on a bit more intensity."
	default:
		return "Looking strong! Here's a bit more challenge for today."
	}
}

func (e Efficiency) instruction() string {
	return fmt.Sprintf(
		"The user is short on time or adherence is slipping. Generate a short high-density session (HIIT or supersets) with a hard cap of %d minutes total.",
		e.MaxMinutes)
}
func (Efficiency) userMessage() string {
	return "Short on time? Today's session is quick and efficient."
}
