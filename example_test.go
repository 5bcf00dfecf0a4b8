package gmboard_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/gmboard"
	"github.com/aretw0/gmboard/pkg/adapters/scripted"
	"github.com/aretw0/gmboard/pkg/domain"
)

func ExampleOpenDocuments() {
	gen := scripted.New([]domain.Response{
		&domain.Narrative{Title: "Briefing", Bullets: []string{"The Computer greets you."}},
		&domain.TurnResolution{
			Trigger:      "Salute",
			Consequences: []string{"The Computer is pleased."},
			NewOptions:   []string{"Leave", "Ask for equipment"},
		},
	})

	sess, err := gmboard.OpenDocuments([]domain.Document{
		{Name: "05_steps.md", Content: "## STEP Intro\nBriefing room.\n\n## STEP Mission\nGo."},
	}, gen)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(sess.Steps())

	ctx := context.Background()
	resp, err := sess.SelectStep(ctx, "STEP Intro")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(resp.Category(), resp.(*domain.Narrative).Title)

	if _, err := sess.SubmitInput(ctx, "We salute"); err != nil {
		log.Fatal(err)
	}
	fmt.Println(sess.Snapshot().OptionsList)

	// Output:
	// [STEP Intro STEP Mission]
	// PLAYER_FACING Briefing
	// [Leave Ask for equipment]
}
