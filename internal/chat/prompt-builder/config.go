package promptbuilder

// Config names the authorities each sourced intent may cite. The lists are
// rendered into the whitelist clause in the order given.
type Config struct {
	MedicalAuthorities  []string
	TrainingAuthorities []string
}

func DefaultConfig() *Config {
	return &Config{
		MedicalAuthorities: []string{
			"WSAVA (World Small Animal Veterinary Association)",
			"AVMA (American Veterinary Medical Association)",
			"AAHA (American Animal Hospital Association)",
			"Merck Veterinary Manual",
			"ASPCA Animal Poison Control Center",
			"Cornell University College of Veterinary Medicine",
		},
		TrainingAuthorities: []string{
			"AVSAB (American Veterinary Society of Animal Behavior)",
			"APDT (Association of Professional Dog Trainers)",
			"CCPDT (Certification Council for Professional Dog Trainers)",
			"IAABC (International Association of Animal Behavior Consultants)",
			"AKC (American Kennel Club)",
			"RSPCA",
		},
	}
}
