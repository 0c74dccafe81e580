package prompts

// Built-in templates. Paragraphs separated by a blank line become separate
// prompt segments.

const requirementsTemplate = `Input: {{.JobDescription}}

Output:
Special Requirements (Explicitly Mentioned): list certifications, licenses, security clearances, travel expectations or other unusual requirements stated in the job description. Quote any application instructions such as deadlines, methods or formatting rules.
Must-Have Skills (Explicitly Mentioned): list only skills or qualifications marked as must-have, required or essential. Use the exact language of the posting.

Omit: inferences about culture or environment, tools or methods not explicitly named, implied skills, suggestions for extra skills, and qualifications not marked as required.

If a requirement is unclear, list it as a point to clarify during the application.`

const fitScoreTemplate = `Requirement: {{.Requirements}}

Resume: {{.Resume}}

Persona: experienced recruiter who screens candidates with both ATS tooling and manual review.

Task:
1. Keyword matching: extract keywords from the requirements and measure how often they appear in the resume, weighting emphasized or repeated terms.
2. Skill alignment: score how well the resume demonstrates each required skill through experience, achievements or certifications.
3. Experience and education: score the alignment of titles, companies, industries and education with the requirements.
4. Combine the scores into one overall fit percentage.

Output: only the overall fit score as a percentage, for example "85.50%".`

const keywordsTemplate = `Persona: executive career coach working with highly skilled job seekers.

Job Description: {{.JobDescription}}

Output:
Hard keywords: skills, tools, technologies and qualifications explicitly named in the job description.
Soft keywords: traits, work styles, values and behaviors implied by the tone and language of the posting.

Instructions: ignore legal, compensation and pay sections. Favor action verbs and direct mentions of required skills for hard keywords. Treat repeated or emphasized terms as more significant. Avoid repetition across both lists.`

const guidanceTemplate = `Persona: career coach reviewing a job description for a senior-level candidate.

Job Description: {{.JobDescription}}

Task: describe what the candidate should include in their resume to impress the recruiter and hiring manager.

Output:
Resume Summary Guidance: instructions for writing the resume summary.
Resume Bullets Guidance: instructions for tailoring each resume bullet to this job.
3 Keys: the three key messages the resume must communicate.`

const bulletFilterTemplate = `Achievements: {{.Achievements}}
Job Description: {{.JobDescription}}
Job Guidance: {{.Guidance}}

Task: select the top {{.Count}} achievements that best match the job description and guidance. Prefer achievements that match required skills, show measurable results, align with the company mission or values, and show leadership where relevant.

Output: the top {{.Count}} achievements, verbatim as they appear in the input, one per line.`

const bulletEnhanceTemplate = `Original Achievement: {{.Bullet}}
Job Guidance: {{.Guidance}}
Keywords: {{.Keywords}}

Task: write {{.Count}} enhanced versions of the original achievement, each under 250 characters. Integrate keywords naturally, name tools or processes used, quantify impact where possible, and align with the Resume Bullets Guidance. Keep the original meaning and action verb. Use professional language without personal pronouns.

Output: only the enhanced bullet text, one version per line, no formatting.`

const summaryTemplate = `Persona: executive career coach working with highly skilled job seekers.

Guidance: {{.Guidance}}

Company: {{.Company}}
Job Description: {{.JobDescription}}

Resume Bullets: {{.Bullets}}

Keywords: {{.Keywords}}

Company Values: {{.Values}}
Company Mission: {{.Mission}}

Task: write {{.Count}} ATS-friendly resume summaries of 3-4 sentences each. Open with a relevant achievement or skill, show expertise with keywords and a quantified accomplishment, address the Resume Summary Guidance, and close with a genuine reference to a company value or the mission. Use active voice and avoid buzzwords and personal pronouns.

Output: {{.Count}} separate lines, each a complete summary.`

const summaryAchievementsTemplate = `Persona: executive career coach working with highly skilled job seekers.
Guidance: {{.Guidance}}
Job Description: {{.JobDescription}}
Achievements: {{.Bullets}}
Keywords: {{.Keywords}}
Summary Paragraph: {{.Summary}}

Company Values: {{.Values}}
Company Mission: {{.Mission}}

Task: identify {{.Count}} achievements that best support the 3 Keys and the Resume Bullets Guidance. Rewrite each to be concise, keyword-rich, tied to the company where it happened, and consistent with the summary paragraph. Prefer quantified and distinctive achievements.

Output: {{.Count}} achievements, one per line, without formatting.`

const skillsTemplate = `Persona: executive career coach working with highly skilled job seekers.

Job Description: {{.JobDescription}}

Keywords: {{.Keywords}}

Resume: {{.Resume}}
Guidance: {{.Guidance}}

Task: extract the hard keywords from the guidance that appear in the resume, and the specific technologies the resume names. Group them into 3 categories based on the guidance 3 Keys, each with a 2-3 word heading. Leave out soft skills.

Output Format:
Heading 1: Skill 1, Skill 2, Skill 3
Heading 2: Skill 1, Skill 2, Skill 3
Heading 3: Skill 1, Skill 2, Skill 3`

const linkedInCommentTemplate = `Company: {{.Company}}
Job Title: {{.JobTitle}}
Company Mission: {{.Mission}}
Company Values: {{.Values}}
Company Recent News: {{.RecentNews}}

Resume Summary: {{.Summary}}
Resume Summary Bullets: {{.SummaryBullets}}

Task: write a personalized LinkedIn comment under 300 characters expressing enthusiasm for the {{.JobTitle}} role at {{.Company}}. Connect my skills to the company mission and my values to theirs, optionally reference the recent news as someone who follows the company, and end with a call to action for anyone at {{.Company}} to reach out.

Output: {{.Count}} possible comments, one per line.`

const coverLetterTemplate = `Resume: {{.Resume}}
Company: {{.Company}}
Job Title: {{.JobTitle}}
Company Mission: {{.Mission}}
Company Values: {{.Values}}
Company Recent News: {{.RecentNews}}

Task: write a personalized cover letter under 350 words expressing enthusiasm for the {{.JobTitle}} role at {{.Company}}. Connect my skills to the company mission, include the three strongest achievements from the resume, align my values with theirs, optionally reference the recent news, and close by asking them to reach out or forward my resume to the right people.

Output: the email body.`

var defaultTemplates = map[TemplateID]string{
	Requirements:        requirementsTemplate,
	FitScore:            fitScoreTemplate,
	Keywords:            keywordsTemplate,
	Guidance:            guidanceTemplate,
	BulletFilter:        bulletFilterTemplate,
	BulletEnhance:       bulletEnhanceTemplate,
	Summary:             summaryTemplate,
	SummaryAchievements: summaryAchievementsTemplate,
	Skills:              skillsTemplate,
	LinkedInComment:     linkedInCommentTemplate,
	CoverLetter:         coverLetterTemplate,
}
