package main

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/myrjola/coldcase/internal/engine"
	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/logging"
	"github.com/myrjola/coldcase/internal/models"
)

const (
	commandEnd  = "END"
	commandSave = "S"
	commandQuit = "Q"
)

var styles = struct {
	title     lipgloss.Style
	heading   lipgloss.Style
	suspect   lipgloss.Style
	clue      lipgloss.Style
	detective lipgloss.Style
	reply     lipgloss.Style
	news      lipgloss.Style
	failure   lipgloss.Style
	dim       lipgloss.Style
}{
	title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ef4444")),
	heading:   lipgloss.NewStyle().Bold(true).Underline(true),
	suspect:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f59e0b")),
	clue:      lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#a3a3a3")),
	detective: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#38bdf8")),
	reply:     lipgloss.NewStyle().Foreground(lipgloss.Color("#e5e5e5")),
	news: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fde047")).
		Border(lipgloss.RoundedBorder()).Padding(0, 1),
	failure: lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")),
	dim:     lipgloss.NewStyle().Faint(true),
}

// readLine prompts and reads one trimmed line. ok is false at the end of input.
func (app *application) readLine(prompt string) (string, bool) {
	app.printf("%s", prompt)
	if !app.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(app.in.Text()), true
}

// play runs the main menu of a session until the detective saves or leaves.
func (app *application) play(ctx context.Context, s *engine.Session, fresh bool) error {
	ctx = logging.WithAttrs(ctx, slog.String("case_id", s.CaseID))
	if err := app.transcripts.RegisterCase(ctx, s.CaseID, s.Scenario.Victim); err != nil {
		return errors.Wrap(err, "register case")
	}

	app.printf("\n%s\n", styles.title.Render("CASE: "+s.Scenario.Victim+" - "+s.Scenario.CrimeLocation))
	if fresh {
		intro, err := app.engine.Intro(ctx, s.Scenario)
		if err != nil {
			app.logger.LogAttrs(ctx, slog.LevelWarn, "intro unavailable", errors.SlogError(err))
			intro = s.Scenario.Atmosphere
		}
		app.printf("\n%s\n", intro)
	}
	app.printf("\n%s\n", styles.heading.Render("FORENSIC REPORT"))
	for _, fact := range s.Scenario.ForensicReport {
		app.printf("- %s\n", fact)
	}
	if s.Scenario.DynamicEvent != "" {
		app.printf("\n%s\n", styles.news.Render("BREAKING NEWS: "+s.Scenario.DynamicEvent))
	}

	for {
		app.printMenu(s)
		choice, ok := app.readLine("> ")
		if !ok {
			return nil
		}
		switch strings.ToUpper(choice) {
		case commandSave:
			name, err := app.saves.Save("", s.Snapshot())
			if err != nil {
				return errors.Wrap(err, "save session")
			}
			app.printf("Saved as %s. Goodbye.\n", styles.suspect.Render(name))
			return nil
		case commandQuit:
			app.printf("Leaving without saving.\n")
			return nil
		}
		id, err := strconv.Atoi(choice)
		if _, known := s.Scenario.Suspect(id); err != nil || !known {
			app.printf("%s\n", styles.failure.Render("Unknown choice "+strconv.Quote(choice)+"."))
			continue
		}
		if err = app.interrogate(ctx, s, id); err != nil {
			return err
		}
	}
}

func (app *application) printMenu(s *engine.Session) {
	app.printf("\n%s\n", styles.heading.Render("SUSPECTS & LEADS"))
	for _, suspect := range s.Scenario.Suspects {
		app.printf("[%d] %s (%s)\n", suspect.ID, styles.suspect.Render(strings.ToUpper(suspect.Name)), suspect.Role)
		app.printf("    %s\n", styles.clue.Render("Reason for questioning: "+suspect.InitialClue))
	}
	app.printf("%s. Save and exit\n%s. Quit without saving\n", commandSave, commandQuit)
}

// interrogate questions one suspect until the detective types END. A failed turn is reported and the interrogation
// goes on. Leaving an interrogation with new statements prints the police report of this visit.
func (app *application) interrogate(ctx context.Context, s *engine.Session, id int) error {
	suspect, _ := s.Scenario.Suspect(id)
	ctx = logging.WithAttrs(ctx, slog.Int("suspect_id", id))

	history, err := app.transcripts.List(ctx, s.CaseID, id)
	if err != nil {
		return errors.Wrap(err, "list transcript")
	}
	app.printf("\n%s\n", styles.heading.Render("INTERROGATION: "+suspect.Name+" (type "+commandEnd+" to leave)"))
	for _, x := range history {
		app.printExchange(suspect, x.Question, x.Answer)
	}
	app.printf("%s\n", styles.clue.Render("Hint: ask about "+suspect.InitialClue))

	var visit []models.Exchange
	for {
		question, ok := app.readLine(styles.detective.Render("DETECTIVE: "))
		if !ok || strings.EqualFold(question, commandEnd) {
			break
		}
		if question == "" {
			continue
		}

		result, turnErr := app.engine.Turn(ctx, s, id, question)
		if turnErr != nil {
			app.logger.LogAttrs(ctx, slog.LevelError, "turn failed", errors.SlogError(turnErr))
			app.printf("%s\n", styles.failure.Render("The suspect stares at you in silence. "+
				"The AI service is unavailable, try again."))
			continue
		}
		app.printf("%s %s\n", styles.suspect.Render(strings.ToUpper(suspect.Name)+":"),
			styles.reply.Render(result.Reply.Text))

		stored, appendErr := app.transcripts.Append(ctx, models.Exchange{
			ID:        0,
			CaseID:    s.CaseID,
			SuspectID: id,
			Order:     0,
			Question:  question,
			Answer:    result.Reply.Text,
			Outcome:   string(result.Reply.Outcome),
		})
		if appendErr != nil {
			app.logger.LogAttrs(ctx, slog.LevelWarn, "exchange not archived", errors.SlogError(appendErr))
		} else {
			visit = append(visit, stored)
		}

		if result.Event != "" {
			app.printf("\n%s\n\n", styles.news.Render("BREAKING NEWS: "+result.Event))
		}
	}

	if len(visit) == 0 {
		return nil
	}
	return app.report(ctx, s, id, visit)
}

func (app *application) printExchange(suspect models.Suspect, question, answer string) {
	app.printf("%s %s\n", styles.detective.Render("DETECTIVE:"), question)
	app.printf("%s %s\n", styles.suspect.Render(strings.ToUpper(suspect.Name)+":"), styles.reply.Render(answer))
}

// report prints the police verification report. A service failure is shown instead of the report.
func (app *application) report(ctx context.Context, s *engine.Session, id int, exchanges []models.Exchange) error {
	report, err := app.engine.PoliceReport(ctx, s, id, exchanges)
	if errors.Is(err, engine.ErrUnknownSuspect) {
		return err
	}
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "police report failed", errors.SlogError(err))
		app.printf("%s\n", styles.failure.Render("The police report could not be written."))
		return nil
	}
	rendered, err := app.renderer.Render("## Police verification report\n\n" + report)
	if err != nil {
		return errors.Wrap(err, "render report")
	}
	app.printf("%s", rendered)
	return nil
}
