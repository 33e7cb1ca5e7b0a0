package fasting

import (
	"math"
	"sort"
	"time"
)

// Stats is the aggregate view over a user's finished sessions.
type Stats struct {
	TotalSessions     int     `json:"totalSessions"`
	CompletedSessions int     `json:"completedSessions"`
	TotalHoursFasted  float64 `json:"totalHoursFasted"`
	LongestFastHours  float64 `json:"longestFast"`
	CurrentStreakDays int     `json:"currentStreak"`
	AverageCompletion float64 `json:"averageCompletion"`
	WeeklyAverage     float64 `json:"weeklyAverage"`
}

// ComputeStats aggregates a user's history. Hours fasted and the
// longest fast count completed sessions only; a stopped fast still
// counts towards total sessions and drags the completion rate down.
func ComputeStats(history []Session, now time.Time) *Stats {
	stats := &Stats{
		TotalSessions: len(history),
	}

	for _, session := range history {
		if !session.Completed {
			continue
		}
		stats.CompletedSessions++
		hours := session.DurationHours()
		stats.TotalHoursFasted += hours
		if hours > stats.LongestFastHours {
			stats.LongestFastHours = hours
		}
	}

	if stats.TotalSessions > 0 {
		stats.AverageCompletion = float64(stats.CompletedSessions) / float64(stats.TotalSessions) * 100
	}

	weeks := int(math.Ceil(float64(stats.TotalSessions) / 7))
	if weeks < 1 {
		weeks = 1
	}
	stats.WeeklyAverage = float64(stats.CompletedSessions) / float64(weeks)

	stats.CurrentStreakDays = CalculateCurrentStreak(history, now)

	return stats
}

// CalculateCurrentStreak walks completed sessions newest first and
// grows the streak while each one started within a day of the streak's
// reach. A single skipped day does not break it.
func CalculateCurrentStreak(history []Session, now time.Time) int {
	var completed []Session
	for _, session := range history {
		if session.Completed {
			completed = append(completed, session)
		}
	}
	sort.Slice(completed, func(i, j int) bool {
		return completed[i].StartTime.After(completed[j].StartTime)
	})

	streak := 0
	for _, session := range completed {
		daysDiff := int(now.Sub(session.StartTime).Hours() / 24)
		if daysDiff <= streak+1 {
			streak++
		} else {
			break
		}
	}
	return streak
}
