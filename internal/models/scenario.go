package models

// Scenario is a murder case. It is immutable once generated except for DynamicEvent, which the session
// controller fills in when breaking news is injected.
type Scenario struct {
	Victim         string    `json:"victim" yaml:"victim"`
	CrimeLocation  string    `json:"crime_location" yaml:"crime_location"`
	Weapon         string    `json:"weapon" yaml:"weapon"`
	Motive         string    `json:"motive" yaml:"motive"`
	Atmosphere     string    `json:"atmosphere" yaml:"atmosphere"`
	ForensicReport []string  `json:"forensic_report" yaml:"forensic_report"`
	Suspects       []Suspect `json:"suspects" yaml:"suspects"`
	DynamicEvent   string    `json:"dynamic_event,omitempty" yaml:"dynamic_event,omitempty"`
}

// Suspect is one of the three people the investigator can question. Exactly one suspect per scenario is guilty.
type Suspect struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Role        string `json:"role" yaml:"role"`
	Guilty      bool   `json:"guilty" yaml:"guilty"`
	Personality string `json:"personality" yaml:"personality"`
	Alibi       string `json:"alibi" yaml:"alibi"`
	Secret      string `json:"secret" yaml:"secret"`
	InitialClue string `json:"initial_clue" yaml:"initial_clue"`
}

// Suspect returns the suspect with the given id.
func (s *Scenario) Suspect(id int) (Suspect, bool) {
	for _, suspect := range s.Suspects {
		if suspect.ID == id {
			return suspect, true
		}
	}
	return Suspect{}, false
}

// Snapshot is the unit of persistence: the scenario plus the session counters.
type Snapshot struct {
	CaseID      string   `json:"case_id"`
	Scenario    Scenario `json:"scenario"`
	TurnsPlayed int      `json:"turns_played"`
	EventFired  bool     `json:"event_fired"`
}
