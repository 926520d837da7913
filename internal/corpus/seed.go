package corpus

// Seed provides the default profile sections echod serves in resume mode.
func Seed() []Section {
	return []Section{
		{
			ID:    "summary",
			Title: "Summary",
			Body: "Sharon is a software engineer focused on distributed systems and " +
				"developer tooling, with production experience across backend services, " +
				"streaming pipelines and cloud infrastructure.",
			Keywords: []string{"who", "about", "background", "summary", "engineer"},
		},
		{
			ID:    "experience",
			Title: "Experience",
			Body: "Most recently built and operated high-throughput service backends: " +
				"API design, observability, capacity planning and on-call ownership. " +
				"Earlier roles covered data ingestion and platform migrations.",
			Keywords: []string{"work", "job", "experience", "company", "role", "career"},
		},
		{
			ID:    "education",
			Title: "Education",
			Body: "Bachelor's degree in computer science with coursework in operating " +
				"systems, databases and machine learning.",
			Keywords: []string{"school", "university", "degree", "education", "study"},
		},
		{
			ID:    "projects",
			Title: "Projects",
			Body: "Side projects include this portfolio's Echo chat assistant, an " +
				"open-source stream processing toolkit, and assorted CLI utilities.",
			Keywords: []string{"project", "projects", "built", "open source", "echo"},
		},
		{
			ID:    "contact",
			Title: "Contact",
			Body: "Reachable through the contact form on the portfolio site or via " +
				"the linked professional profiles.",
			Keywords: []string{"contact", "email", "reach", "hire", "linkedin"},
		},
	}
}
