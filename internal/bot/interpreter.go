package bot

import (
	"context"
	"fmt"
	"strings"
)

// Keyword triggers the weather command. The match is case sensitive and only
// applies when the keyword is the first whitespace-delimited token.
const Keyword = "Информация"

// CommandResult is the outcome of interpreting a message body.
type CommandResult struct {
	// Body is the text to store and broadcast. When no command applied or
	// the command failed, it equals the original body unchanged.
	Body string
	// Substituted reports whether Body is a bot reply rather than the
	// author's original text.
	Substituted bool
}

// Interpreter rewrites message bodies that invoke a recognized command.
// A nil or failing lookup degrades to pass-through, never an error.
type Interpreter struct {
	lookup WeatherLookup
}

func NewInterpreter(lookup WeatherLookup) *Interpreter {
	return &Interpreter{lookup: lookup}
}

// Interpret examines body for the weather command. Non-command bodies and
// every failure mode (no city token, lookup error, nil lookup) return the
// original body untouched.
func (i *Interpreter) Interpret(ctx context.Context, body string) CommandResult {
	passthrough := CommandResult{Body: body}

	fields := strings.Fields(body)
	if len(fields) < 2 || fields[0] != Keyword {
		return passthrough
	}
	if i.lookup == nil {
		return passthrough
	}

	report, err := i.lookup.CityWeather(ctx, fields[1])
	if err != nil {
		return passthrough
	}

	return CommandResult{
		Body: fmt.Sprintf(
			"Бот. Город: %s. Страна: %s. Местное время: %s. Температура: %v℃. Погода: %s. Ветер: %v м.с.",
			report.City, report.Country, report.LocalTime,
			report.TempC, report.Condition, report.WindMph,
		),
		Substituted: true,
	}
}
