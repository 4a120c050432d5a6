// Package render formats a startup pack for people: markdown for chat
// replies and sanitized HTML for email and history views.
package render

import (
	"fmt"
	"strings"

	"github.com/venturemind/venturemind-backend/internal/models"
)

// Markdown renders the pack in a fixed section order. The scenario section
// is left out entirely when the pack has no scenario. The logo is never
// rendered; clients embed it from the pack itself.
func Markdown(pack models.StartupPack) string {
	var b strings.Builder

	b.WriteString("## 🚀 Startup Summary\n")
	b.WriteString(strings.TrimSpace(pack.StartupSummary))
	b.WriteString("\n\n")

	if s := pack.RealWorldScenario; s != nil {
		b.WriteString("## 🌍 Real World Scenario\n")
		b.WriteString("### 👤 User Story\n")
		b.WriteString(strings.TrimSpace(s.UserStory) + "\n")
		b.WriteString("### 😫 The Pain Point\n")
		b.WriteString(strings.TrimSpace(s.PainPointSolved) + "\n")
		b.WriteString("### ☀️ A Day in the Life\n")
		b.WriteString(strings.TrimSpace(s.DayInLife) + "\n")
		b.WriteString("\n")
	}

	b.WriteString("### 🧩 Competitors\n")
	for _, c := range pack.Competitors {
		fmt.Fprintf(&b, "- %s\n", strings.TrimSpace(c))
	}
	b.WriteString("\n")

	brand := pack.Brand
	b.WriteString("### 🎨 Brand Identity\n")
	fmt.Fprintf(&b, "- **Name:** %s\n", brand.Name)
	if brand.AltName != "" {
		fmt.Fprintf(&b, "- **Alternate Name:** %s\n", brand.AltName)
	}
	fmt.Fprintf(&b, "- **Tagline:** %s\n", brand.Tagline)
	fmt.Fprintf(&b, "- **Tone:** %s\n", brand.BrandTone)
	fmt.Fprintf(&b, "- **Colors:** %s\n", strings.Join(brand.Colors, ", "))
	b.WriteString("\n")

	f := pack.Financials
	b.WriteString("### 💰 Financial Overview\n")
	fmt.Fprintf(&b, "- **Cost:** %s\n", f.TotalCost)
	fmt.Fprintf(&b, "- **Revenue:** %s\n", f.ProjectedRevenue)
	fmt.Fprintf(&b, "- **ROI:** %s\n", f.ROI)
	fmt.Fprintf(&b, "- **Burn:** %s\n", f.BurnRate)
	fmt.Fprintf(&b, "- **Break-even:** %s\n", f.BreakEvenMonth)
	fmt.Fprintf(&b, "- **Runway:** %s\n", f.Runway)
	b.WriteString("\n")

	p := pack.Pitch
	b.WriteString("### 🎤 Elevator Pitch\n")
	b.WriteString(strings.TrimSpace(p.ElevatorPitch))
	b.WriteString("\n\n")

	b.WriteString("### 📊 Pitch Deck Outline\n")
	fmt.Fprintf(&b, "**1. Problem** – %s\n", p.Slides.Problem)
	fmt.Fprintf(&b, "**2. Solution** – %s\n", p.Slides.Solution)
	fmt.Fprintf(&b, "**3. Market** – %s\n", p.Slides.Market)
	fmt.Fprintf(&b, "**4. Model** – %s\n", p.Slides.Model)
	fmt.Fprintf(&b, "**5. Ask** – %s\n", p.Slides.BrandAsk)

	return b.String()
}
