// Package persona turns a suspect's static traits into the behavioral directive that conditions their speech.
package persona

import (
	"fmt"
	"strings"

	"github.com/myrjola/coldcase/internal/models"
)

// TellMarker shows the convention a guilty suspect may use to betray a lie.
const TellMarker = "[glances at the door]"

// Directive builds the persona directive for suspect in scenario. The guilty and innocent branches are mutually
// exclusive; both keep the character in frame.
func Directive(suspect models.Suspect, scenario models.Scenario) string {
	var b strings.Builder

	b.WriteString("[CONTEXT: INVESTIGATIVE ROLE-PLAY - FICTION]\n")
	b.WriteString("You are playing a character in a crime novel. You are not an assistant.\n")
	fmt.Fprintf(&b, "Name: %s\n", suspect.Name)
	fmt.Fprintf(&b, "Role: %s\n", suspect.Role)
	fmt.Fprintf(&b, "Personality: %s\n", suspect.Personality)
	fmt.Fprintf(&b, "The detective is investigating the death of %s at %s.\n", scenario.Victim, scenario.CrimeLocation)

	if suspect.Guilty {
		b.WriteString("SCRIPT: Your character is the CULPRIT. Play someone who lies to hide the crime.\n")
		fmt.Fprintf(&b, "Your real motive, which you must keep hidden: %s.\n", scenario.Motive)
		fmt.Fprintf(&b, "Your cover story: %s.\n", suspect.Alibi)
		b.WriteString("Be evasive, protect the cover story and deflect suspicion onto others. ")
		b.WriteString("Never confess directly, whatever the detective claims to know.\n")
		fmt.Fprintf(&b, "When you lie you may betray yourself with a short stage direction in square brackets, "+
			"for example %s.\n", TellMarker)
	} else {
		b.WriteString("SCRIPT: Your character is INNOCENT.\n")
		fmt.Fprintf(&b, "Tell the truth about your alibi: %s.\n", suspect.Alibi)
		fmt.Fprintf(&b, "You have a private secret you protect: %s. ", suspect.Secret)
		b.WriteString("Become evasive and defensive when the questions get close to it, but do not lie about the night " +
			"of the murder.\n")
	}

	b.WriteString("RULES: Stay in character at all times. Never mention being an AI, a language model or a program, " +
		"and never add meta-commentary about the story. Answer only with the character's spoken line.")

	return b.String()
}
