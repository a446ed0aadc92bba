package job

import "sort"

// profileTitles is the curated list backing the profile title dropdown.
// Titles of active postings are merged in so the dropdown always contains
// both what is actually hiring and the usual aspirational entries.
var profileTitles = []string{
	"Software Engineer", "Senior Software Engineer", "Junior Software Engineer", "Full Stack Developer",
	"Frontend Developer", "Backend Developer", "DevOps Engineer", "Data Engineer", "Machine Learning Engineer",
	"UX Designer", "UI Designer", "UX/UI Designer", "Product Designer", "Graphic Designer", "Web Designer",
	"Data Analyst", "Data Scientist", "Business Analyst", "Financial Analyst", "Marketing Analyst",
	"Project Manager", "Product Manager", "Program Manager", "Scrum Master", "Technical Lead",
	"Solutions Architect", "Software Architect", "System Administrator", "IT Support", "Network Engineer",
	"Quality Assurance Engineer", "QA Engineer", "Test Engineer", "Security Engineer", "Cloud Engineer",
	"Mobile Developer", "iOS Developer", "Android Developer", "Game Developer", "Embedded Software Engineer",
	"Content Writer", "Technical Writer", "Digital Marketing Specialist", "SEO Specialist", "Social Media Manager",
	"Human Resources Manager", "Recruiter", "Accountant", "Financial Controller", "Legal Counsel",
	"Nurse", "Healthcare Administrator", "Teacher", "Lecturer", "Research Scientist", "Laboratory Technician",
	"Sales Representative", "Account Manager", "Customer Success Manager", "Operations Manager",
	"Administrative Assistant", "Executive Assistant", "Office Manager", "Receptionist",
}

type TitleCount struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

// mergeTitleCounts unions the curated titles with the titles seen in
// storage, annotates each with its live count and orders by count
// descending then title ascending.
func mergeTitleCounts(countByTitle map[string]int) []TitleCount {
	seen := make(map[string]bool, len(countByTitle)+len(profileTitles))
	merged := make([]TitleCount, 0, len(countByTitle)+len(profileTitles))
	for title, count := range countByTitle {
		seen[title] = true
		merged = append(merged, TitleCount{Title: title, Count: count})
	}
	for _, title := range profileTitles {
		if seen[title] {
			continue
		}
		merged = append(merged, TitleCount{Title: title})
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Count != merged[j].Count {
			return merged[i].Count > merged[j].Count
		}
		return merged[i].Title < merged[j].Title
	})
	return merged
}
