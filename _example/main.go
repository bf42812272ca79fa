package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hupe1980/symgo"
	"github.com/hupe1980/symgo/infer"
	"github.com/hupe1980/symgo/logic"
)

func main() {
	ctx := context.Background()

	geometry := 4096
	levels := 5000

	rel := infer.NewRelations()
	rel.SetTransitive("IS_A")

	sg := symgo.Dense(geometry).Relations(rel).MustBuild()
	defer sg.Close()

	fmt.Println("--- Assert ---")
	fmt.Println("Geometry:", geometry)
	fmt.Println("Facts:", levels)

	start := time.Now()

	for i := 0; i < levels; i++ {
		subject := fmt.Sprintf("taxon-%d", i)
		object := fmt.Sprintf("taxon-%d", i+1)
		if _, err := sg.AddFact(ctx, subject, "IS_A", object); err != nil {
			log.Fatal(err)
		}
	}

	fmt.Printf("Seconds: %.2f\n\n", time.Since(start).Seconds())

	fmt.Println("--- Query (deep transitive chain) ---")

	start = time.Now()

	res, err := sg.Query(ctx, "taxon-0", "IS_A", fmt.Sprintf("taxon-%d", levels))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Truth: %s, Method: %s, Steps: %d\n", res.Truth, res.Method, len(res.Steps))
	fmt.Printf("Seconds: %.8f\n\n", time.Since(start).Seconds())

	fmt.Println("--- Prove (rule with negation) ---")

	flies, err := logic.ParseStatement("CAN(?x, fly)")
	if err != nil {
		log.Fatal(err)
	}
	condition := logic.NewCompound(logic.And,
		logic.NewStatement("IS_A", logic.Var("x"), logic.Lit("bird")),
		logic.NewCompound(logic.Not,
			logic.NewStatement("IS_A", logic.Var("x"), logic.Lit("penguin")),
		),
	)
	if err := sg.RegisterRule("flies", condition, flies); err != nil {
		log.Fatal(err)
	}

	if _, err := sg.AddFact(ctx, "Tweety", "IS_A", "bird"); err != nil {
		log.Fatal(err)
	}

	start = time.Now()

	proof, err := sg.ProveString(ctx, "CAN(Tweety, fly)")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Proven: %t, Confidence: %.2f\n", proof.Proven, proof.Confidence)
	for _, step := range proof.Steps {
		fmt.Println("  ", step)
	}
	fmt.Printf("Seconds: %.8f\n\n", time.Since(start).Seconds())

	fmt.Println("--- Analogize ---")

	point := func(offset int8) []int8 {
		p := make([]int8, geometry)
		p[0], p[1] = offset, offset
		return p
	}
	for label, p := range map[string][]int8{
		"Theft": point(0),
		"Jail":  point(2),
		"Fraud": point(10),
		"Fine":  point(12),
	} {
		if err := sg.Observe(ctx, label, p); err != nil {
			log.Fatal(err)
		}
	}

	start = time.Now()

	an, err := sg.Analogize(ctx, "Theft", "Jail", "Fraud")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Theft:Jail :: Fraud:%s (distance %d)\n", an.Concept, an.Distance)
	fmt.Printf("Seconds: %.8f\n", time.Since(start).Seconds())
}
