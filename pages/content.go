package pages

// Step is one card on the How It Works page.
type Step struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type HowItWorksContent struct {
	Renters  []Step `json:"renter_steps"`
	Owners   []Step `json:"owner_steps"`
	Benefits []Step `json:"benefits"`
}

var HowItWorksSteps = HowItWorksContent{
	Renters: []Step{
		{"Browse & Search", "Find the perfect tools and equipment near you using our smart search filters"},
		{"Book Instantly", "Select your dates, choose pickup or delivery, and confirm your booking"},
		{"Collect & Use", "Pick up your equipment and get your project done safely"},
		{"Return & Review", "Return the equipment and leave a review for future renters"},
	},
	Owners: []Step{
		{"List Your Equipment", "Upload photos, set your price, and describe your tools in minutes"},
		{"Accept Bookings", "Review and approve rental requests from verified users"},
		{"Earn Money", "Keep 90% of the rental fee - we handle payments automatically"},
		{"Stay Protected", "All rentals are insured and backed by our support team"},
	},
	Benefits: []Step{
		{"Save Money", "Rent tools when you need them instead of buying expensive equipment you'll rarely use"},
		{"Fully Insured", "Every rental is covered by comprehensive insurance for complete peace of mind"},
		{"Verified Community", "All users are verified and reviewed to ensure a safe, trustworthy marketplace"},
	},
}
