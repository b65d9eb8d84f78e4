package main

import (
	"fmt"
	"io"

	"github.com/amonks/muontickets/board"
	"github.com/amonks/muontickets/ticket"
)

// printDepTree prints a dependency tree with ASCII art.
func printDepTree(w io.Writer, node *board.TreeNode, prefix string, isLast bool, highlight func(string) string) {
	connector := "├── "
	if isLast {
		connector = "└── "
	}
	if prefix == "" {
		connector = ""
	}

	title := "(missing)"
	icon := "[?]"
	if node.Entry != nil {
		title = node.Entry.Ticket.Title
		icon = statusIcon(node.Entry.Ticket.Status)
	}
	suffix := ""
	if node.Cycle {
		suffix = " (cycle)"
	}

	fmt.Fprintf(w, "%s%s%s %s %s%s\n", prefix, connector, icon, highlight(node.ID), title, suffix)

	childPrefix := prefix
	if prefix != "" || connector == "" {
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	}

	for i, child := range node.Children {
		printDepTree(w, child, childPrefix, i == len(node.Children)-1, highlight)
	}
}

// statusIcon returns an icon for the status.
func statusIcon(s ticket.Status) string {
	switch s {
	case ticket.StatusReady:
		return "[ ]"
	case ticket.StatusClaimed:
		return "[~]"
	case ticket.StatusBlocked:
		return "[!]"
	case ticket.StatusNeedsReview:
		return "[r]"
	case ticket.StatusDone:
		return "[x]"
	default:
		return "[?]"
	}
}
