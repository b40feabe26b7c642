package types

type Profile struct {
	ProfileID   string `json:"profile_id"`
	ProfileName string `json:"profile_name"`
}

type Briefcase struct {
	ID          string   `json:"id"`
	SocialMedia Platform `json:"social_media"`
	ProfileID   string   `json:"profile_id"`
	UserName    string   `json:"user_name"`
	IsActive    bool     `json:"is_active"`
}

func CloneProfiles(in []Profile) []Profile {
	if in == nil {
		return nil
	}
	return append([]Profile{}, in...)
}

func CloneBriefcases(in []Briefcase) []Briefcase {
	if in == nil {
		return nil
	}
	return append([]Briefcase{}, in...)
}

// FilterBriefcases returns a new slice holding the briefcases bound to
// platform. The result never aliases in.
func FilterBriefcases(in []Briefcase, platform Platform) []Briefcase {
	out := make([]Briefcase, 0, len(in))
	for _, bc := range in {
		if bc.SocialMedia == platform {
			out = append(out, bc)
		}
	}
	return out
}

func FindProfile(profiles []Profile, id string) (Profile, bool) {
	for _, p := range profiles {
		if p.ProfileID == id {
			return p, true
		}
	}
	return Profile{}, false
}
