package snake

// milestoneMessages are shown each time the score crosses a multiple of
// MilestoneEvery.
var milestoneMessages = []string{
	"Un PC libéré !",
	"Linux vaincra !",
	"Bye bye Windows !",
	"Vive le Libre !",
	"L'obsolescence ? Non merci !",
	"Le village résiste !",
	"NERD en force !",
	"Tux approuve !",
	"Open Source FTW !",
	"David bat Goliath !",
}

// MilestoneMessages returns the pool of milestone banners.
func MilestoneMessages() []string {
	return append([]string(nil), milestoneMessages...)
}
