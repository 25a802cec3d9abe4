package domain

import "strings"

type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	Award       int64  `json:"award"`
	IsCompleted bool   `json:"is_completed"`
}

// TaskFilter decides which tasks get submitted for completion.
type TaskFilter interface {
	Select(tasks []Task) []Task
}

// AllowList keeps, in list order, the first task matching each title.
type AllowList []string

func (l AllowList) Select(tasks []Task) []Task {
	selected := make([]Task, 0, len(l))
	for _, title := range l {
		for _, task := range tasks {
			if task.Title == title {
				selected = append(selected, task)
				break
			}
		}
	}

	return selected
}

// Missing reports allow-listed titles absent from tasks.
func (l AllowList) Missing(tasks []Task) []string {
	present := make(map[string]struct{}, len(tasks))
	for _, task := range tasks {
		present[task.Title] = struct{}{}
	}

	var missing []string
	for _, title := range l {
		if _, ok := present[title]; !ok {
			missing = append(missing, title)
		}
	}

	return missing
}

// DenyList keeps every task whose title is not listed.
type DenyList []string

func (l DenyList) Select(tasks []Task) []Task {
	denied := make(map[string]struct{}, len(l))
	for _, title := range l {
		denied[title] = struct{}{}
	}

	selected := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		if _, ok := denied[task.Title]; ok {
			continue
		}
		selected = append(selected, task)
	}

	return selected
}

// ParseTitleList splits newline-delimited titles, dropping blank lines.
func ParseTitleList(raw string) AllowList {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	titles := make(AllowList, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		titles = append(titles, line)
	}

	return titles
}
