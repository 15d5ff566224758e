package service

import (
	"fmt"
	"strings"

	"scam-arena/internal/domain"
)

const redTeamPrompt = `You are a Red Team AI agent in a cybersecurity training simulation. Generate REALISTIC crypto scam pitches for EDUCATIONAL PURPOSES ONLY.

Scam Types: PONZI SCHEME, RUG PULL, PUMP & DUMP, FAKE ICO, PHISHING

Requirements:
- Use 2024-2025 crypto trends (AI agents, RWA, DePIN, L2s, restaking)
- Include psychological triggers (FOMO, authority, urgency)
- Mix legitimate claims with subtle red flags

Output ONLY valid JSON:
{"projectName": "Name", "pitch": "Detailed pitch...", "scamType": "ponzi", "psychTriggers": [], "technicalClaims": [], "redFlags": []}`

// RedFlagCategories are the indicators the blue team is told to look for.
var RedFlagCategories = []string{
	"UNREALISTIC RETURNS",
	"VAGUE TECHNOLOGY",
	"ANONYMOUS TEAMS",
	"URGENCY TACTICS",
	"PONZI STRUCTURE",
	"NO PRODUCT",
	"POOR COMMUNICATION",
	"REGULATORY ISSUES",
	"FAKE SOCIAL PROOF / EXIT LIQUIDITY",
}

var blueTeamPrompt = `You are a Blue Team AI agent detecting cryptocurrency scams.

Red Flags: ` + strings.Join(RedFlagCategories, ", ") + `

Output ONLY valid JSON:
{"isScam": true, "confidence": 85, "scamType": "ponzi", "detectedFlags": [{"flag": "Description", "severity": "high", "explanation": "Why"}], "reasoning": "Analysis...", "recommendation": "AVOID"}`

func redTeamUserPrompt(hint *domain.ScamType) string {
	kind := "random"
	if hint != nil {
		kind = string(*hint)
	}
	return fmt.Sprintf("Generate a %s crypto scam pitch. Output ONLY JSON.", kind)
}

func blueTeamUserPrompt(pitch domain.ScamPitch) string {
	return fmt.Sprintf("Analyze:\nPROJECT: %s\nPITCH: %s\n\nOutput ONLY JSON.", pitch.ProjectName, pitch.Pitch)
}
