// Package grouping derives long-video projects from the [LV:<groupId>] marker
// that segment prompts carry. Groups are never stored; Group recomputes them
// from the task list on every call.
package grouping

import (
	"regexp"

	"mediaTracker/tracker/models"
)

var markerPattern = regexp.MustCompile(`\[LV:([^\]]+)\]`)

type GroupStatus string

const (
	GroupActive          GroupStatus = "active"
	GroupCompleted       GroupStatus = "completed"
	GroupPartiallyFailed GroupStatus = "partially_failed"
)

type TaskGroup struct {
	GroupID  string
	Segments []models.GenerationTask
	Status   GroupStatus
}

func (g TaskGroup) CompletedSegments() int {
	return g.count(models.StatusCompleted)
}

func (g TaskGroup) FailedSegments() int {
	return g.count(models.StatusFailed)
}

func (g TaskGroup) count(status models.TaskStatus) int {
	n := 0
	for _, s := range g.Segments {
		if s.Status == status {
			n++
		}
	}
	return n
}

type Projects struct {
	Active          []TaskGroup
	Completed       []TaskGroup
	PartiallyFailed []TaskGroup
}

func ExtractGroupID(prompt string) (string, bool) {
	m := markerPattern.FindStringSubmatch(prompt)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// GroupIDOf returns the group of a video task, or false for image tasks and
// prompts without a marker.
func GroupIDOf(task models.GenerationTask) (string, bool) {
	if task.TaskType != models.TaskTypeVideo {
		return "", false
	}
	return ExtractGroupID(task.Input.Prompt)
}

// Group buckets marked video tasks by group id. Groups appear in order of
// first encounter and segments keep the order of the input slice, not
// creation time.
func Group(tasks []models.GenerationTask) []TaskGroup {
	index := make(map[string]int)
	var groups []TaskGroup

	for _, task := range tasks {
		id, ok := GroupIDOf(task)
		if !ok {
			continue
		}
		i, seen := index[id]
		if !seen {
			i = len(groups)
			index[id] = i
			groups = append(groups, TaskGroup{GroupID: id})
		}
		groups[i].Segments = append(groups[i].Segments, task)
	}

	for i := range groups {
		groups[i].Status = Classify(groups[i].Segments)
	}
	return groups
}

// Classify is active while any segment is pending or processing, completed
// when every segment completed, and partially failed when all segments are
// terminal but at least one failed.
func Classify(segments []models.GenerationTask) GroupStatus {
	allCompleted := true
	for _, s := range segments {
		if s.Status.IsActive() {
			return GroupActive
		}
		if s.Status != models.StatusCompleted {
			allCompleted = false
		}
	}
	if allCompleted {
		return GroupCompleted
	}
	return GroupPartiallyFailed
}

func Partition(groups []TaskGroup) Projects {
	var p Projects
	for _, g := range groups {
		switch g.Status {
		case GroupActive:
			p.Active = append(p.Active, g)
		case GroupCompleted:
			p.Completed = append(p.Completed, g)
		case GroupPartiallyFailed:
			p.PartiallyFailed = append(p.PartiallyFailed, g)
		}
	}
	return p
}
