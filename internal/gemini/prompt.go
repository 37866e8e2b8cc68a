package gemini

import (
	"fmt"
	"strings"
)

// PromptInput carries everything the personalization prompt needs for one
// recipient.
type PromptInput struct {
	CompanyName   string
	RecruiterName string
	BaseTemplate  string
	ResumeSummary string

	// CompanyResearch is prior research text about the company, typically
	// produced by ResearchPrompt. Optional.
	CompanyResearch string

	// Fields holds free-form columns from the recipient row (Role, Industry,
	// Company Size and anything else the spreadsheet carries).
	Fields map[string]string
}

// Well-known free-form field names that get called out in the prompt.
const (
	FieldRole        = "Role"
	FieldIndustry    = "Industry"
	FieldCompanySize = "Company Size"
)

// PersonalizationPrompt builds the prompt used to generate one personalized
// outreach email.
func PersonalizationPrompt(in PromptInput) string {
	companyContext := fmt.Sprintf("**Target Company**: %s", in.CompanyName)
	if in.CompanyResearch != "" {
		companyContext += fmt.Sprintf("\n**Company Research**: %s", in.CompanyResearch)
	}
	for _, field := range []string{FieldRole, FieldIndustry, FieldCompanySize} {
		if v := in.Fields[field]; v != "" {
			companyContext += fmt.Sprintf("\n**%s**: %s", field, v)
		}
	}

	resumeContext := in.ResumeSummary
	if resumeContext == "" {
		resumeContext = "Resume not provided - use generic professional language"
	}

	var sb strings.Builder
	sb.WriteString("You are an expert email personalization assistant. Your task is to create a highly personalized cold email outreach based on the candidate's resume and target company information.\n\n")
	sb.WriteString("**CANDIDATE PROFILE**:\n")
	sb.WriteString(resumeContext)
	sb.WriteString("\n\n**TARGET COMPANY INFORMATION**:\n")
	sb.WriteString(companyContext)
	fmt.Fprintf(&sb, "\n**Recruiter Name**: %s\n", in.RecruiterName)
	sb.WriteString("\n**BASE EMAIL TEMPLATE** (use as structure reference):\n")
	sb.WriteString(in.BaseTemplate)
	sb.WriteString("\n\n**PERSONALIZATION REQUIREMENTS**:\n")
	fmt.Fprintf(&sb, "1. **Resume-Based Content**: Extract key skills, experiences, and achievements from the resume and mention specific relevant ones\n")
	fmt.Fprintf(&sb, "2. **Company-Specific Research**: Mention specific details about %s such as their core business, recent projects, company culture, industry position, and technologies they use\n", in.CompanyName)
	sb.WriteString("3. **Role Alignment**: If role information is provided, explain how the candidate's background aligns with the specific role requirements\n")
	fmt.Fprintf(&sb, "4. **Value Proposition**: Clearly articulate how the candidate's skills can benefit %s\n", in.CompanyName)
	sb.WriteString("5. **Professional Tone**: Maintain a confident yet humble professional tone\n")
	sb.WriteString("6. **Concise**: Keep under 200 words while being impactful\n")
	sb.WriteString("7. **Call-to-Action**: Include a clear next step (call, meeting, etc.)\n")
	sb.WriteString("\n**CRITICAL INSTRUCTIONS**:\n")
	sb.WriteString("- NEVER use placeholder text like [mention...] or [research...]\n")
	fmt.Fprintf(&sb, "- ALWAYS provide specific company details you know about %s\n", in.CompanyName)
	sb.WriteString("- Use actual examples from the resume (projects, achievements, skills)\n")
	sb.WriteString("- Avoid generic phrases like \"I'm interested in opportunities\"\n")
	sb.WriteString("- Focus on mutual value and fit\n")
	sb.WriteString("- Use single line breaks between paragraphs\n")
	sb.WriteString("\n**OUTPUT**: Return only the personalized email content with proper formatting.\n")

	return sb.String()
}

// ResearchPrompt builds the prompt used to gather background information
// about a company before personalizing the email.
func ResearchPrompt(companyName string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Research the company %q and provide specific information about:\n", companyName)
	sb.WriteString("1. Core business/services they offer\n")
	sb.WriteString("2. Recent projects or achievements\n")
	sb.WriteString("3. Company culture or values\n")
	sb.WriteString("4. Industry position or reputation\n")
	sb.WriteString("5. Technologies they use\n")
	sb.WriteString("6. Any recent news or developments\n")
	sb.WriteString("\nProvide concise, factual information that would be useful for a job application email. Keep it under 300 words.\n")
	return sb.String()
}
