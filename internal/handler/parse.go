package handler

import (
	"strconv"
	"strings"

	"github.com/set-night/orderboard/internal/domain"
)

// commandArgs returns the text after the command word.
func commandArgs(text string) string {
	_, args, _ := strings.Cut(strings.TrimSpace(text), " ")
	return strings.TrimSpace(args)
}

// parseTaskCreate reads "Name | points | max". max defaults to 0.
func parseTaskCreate(args string) (name string, points int64, maxCompletions int, err error) {
	parts := strings.Split(args, "|")
	if len(parts) < 2 || len(parts) > 3 {
		return "", 0, 0, &domain.ValidationError{Field: "input", Reason: "use /taskcreate Name | points | max"}
	}

	name = strings.TrimSpace(parts[0])
	points, err = strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return "", 0, 0, &domain.ValidationError{Field: "points", Reason: "must be a whole number"}
	}
	if len(parts) == 3 {
		maxCompletions, err = strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return "", 0, 0, &domain.ValidationError{Field: "max_completions", Reason: "must be a whole number"}
		}
	}
	return name, points, maxCompletions, nil
}

// parseClaimArgs reads "<task key or name> <amount>". The amount is the last
// word so task names may contain spaces.
func parseClaimArgs(args string) (taskKey string, amount int, err error) {
	i := strings.LastIndex(args, " ")
	if i < 0 {
		return "", 0, &domain.ValidationError{Field: "input", Reason: "use /claim <order> <amount>"}
	}

	amount, err = strconv.Atoi(strings.TrimSpace(args[i+1:]))
	if err != nil {
		return "", 0, &domain.ValidationError{Field: "amount", Reason: "must be a whole number"}
	}
	if err := domain.ValidateClaimAmount(amount); err != nil {
		return "", 0, err
	}
	return domain.TaskKey(args[:i]), amount, nil
}

// parseAmountCallback reads "amt_<n>_<key>".
func parseAmountCallback(data string) (amount int, taskKey string, err error) {
	rest, ok := strings.CutPrefix(data, "amt_")
	if !ok {
		return 0, "", &domain.ValidationError{Field: "callback", Reason: "is malformed"}
	}
	n, key, ok := strings.Cut(rest, "_")
	if !ok || key == "" {
		return 0, "", &domain.ValidationError{Field: "callback", Reason: "is malformed"}
	}
	amount, err = strconv.Atoi(n)
	if err != nil {
		return 0, "", &domain.ValidationError{Field: "amount", Reason: "must be a whole number"}
	}
	return amount, key, nil
}

// parsePeriodArg defaults to weekly.
func parsePeriodArg(args string) (domain.Period, error) {
	if args == "" {
		return domain.PeriodWeekly, nil
	}
	return domain.ParsePeriod(strings.ToLower(strings.Fields(args)[0]))
}

// remainingAllowance is -1 for unlimited tasks.
func remainingAllowance(task domain.Task, counted int) int {
	if task.Unlimited() {
		return -1
	}
	return max(task.MaxCompletions-counted, 0)
}
