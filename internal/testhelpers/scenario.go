package testhelpers

import "github.com/myrjola/coldcase/internal/models"

// Scenario returns a valid case where suspect 0 is guilty.
func Scenario() models.Scenario {
	return models.Scenario{
		Victim:        "Edward Blackwood",
		CrimeLocation: "The greenhouse of Blackwood Manor",
		Weapon:        "Pruning shears",
		Motive:        "Edward was about to disinherit his nephew",
		Atmosphere:    "Rain drums on the glass roof, the gas lamps flicker.",
		ForensicReport: []string{
			"Time of death: 22:00",
			"Body discovered at 06:30 by the gardener",
			"Soil from the greenhouse found on a pair of evening shoes",
		},
		Suspects: []models.Suspect{
			{
				ID:          0,
				Name:        "Oliver Blackwood",
				Role:        "Nephew",
				Guilty:      true,
				Personality: "charming, resentful, calculating",
				Alibi:       "Claims he was playing cards at the club until midnight",
				Secret:      "Owes a fortune to a bookmaker",
				InitialClue: "Seen arguing with the victim at dinner",
			},
			{
				ID:          1,
				Name:        "Margaret Hale",
				Role:        "Housekeeper",
				Guilty:      false,
				Personality: "stern, loyal, observant",
				Alibi:       "Was polishing silver in the pantry with the cook",
				Secret:      "Has been reading the victim's letters",
				InitialClue: "Her keys open the greenhouse",
			},
			{
				ID:          2,
				Name:        "Thomas Reed",
				Role:        "Gardener",
				Guilty:      false,
				Personality: "quiet, nervous, honest",
				Alibi:       "Was at the village pub until closing time",
				Secret:      "Sells the manor's orchids on the side",
				InitialClue: "The pruning shears are his",
			},
		},
		DynamicEvent: "",
	}
}
