package hiscores

import (
	"strconv"
	"strings"

	"osrs-tracker/internal/domain"
)

// ParseOptionalInt converts one raw feed field. The feed writes -1 for
// "unranked/absent"; that sentinel, along with anything non-numeric,
// becomes nil here and never crosses this boundary as an integer.
func ParseOptionalInt(s string) *int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v == -1 {
		return nil
	}
	return &v
}

// ParseRecord maps the raw record lines onto the skill and minigame
// catalogs by position: the first len(SkillNames) lines are skills
// (rank,level,xp), the rest are minigames (rank,score). Lines past the
// known minigame catalog get synthesized "Activity N" labels so an
// upstream addition widens the data instead of breaking the parse.
// Snapshot ids on the returned records are filled in at insert time.
func ParseRecord(lines []string) ([]domain.SkillRecord, []domain.MinigameRecord) {
	var skills []domain.SkillRecord
	var minigames []domain.MinigameRecord

	for i, line := range lines {
		parts := strings.Split(line, ",")
		if i < len(SkillNames) {
			skill := domain.SkillRecord{Skill: SkillNames[i]}
			if len(parts) > 0 {
				skill.Rank = ParseOptionalInt(parts[0])
			}
			if len(parts) > 1 {
				skill.Level = ParseOptionalInt(parts[1])
			}
			if len(parts) > 2 {
				skill.XP = ParseOptionalInt(parts[2])
			}
			skills = append(skills, skill)
			continue
		}

		mi := i - len(SkillNames)
		minigame := domain.MinigameRecord{Activity: minigameLabel(mi)}
		if len(parts) > 0 {
			minigame.Rank = ParseOptionalInt(parts[0])
		}
		if len(parts) > 1 {
			minigame.Score = ParseOptionalInt(parts[1])
		}
		minigames = append(minigames, minigame)
	}

	return skills, minigames
}
