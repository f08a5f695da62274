// Package quote holds the QuoteGen domain model: categories and their prompts,
// generated quotes, the in-memory history and output cleanup.
//
// Everything here is pure and free of I/O so the session layer and the terminal
// UI can share it without coordination.
//
// # Categories
//
// Eight fixed categories are supported. Each carries a label, an emoji, an
// accent colour and the prompt used to ask the model for a quote:
//
//	c, _ := quote.ParseCategory("wisdom")
//	fmt.Println(c.Emoji(), c.Label())
//	fmt.Println(c.Prompt())
//
// # Identity
//
// A quote is identified by its creation time at millisecond precision.
// History.NextTimestamp guarantees that two quotes generated within the same
// millisecond still receive distinct identities.
package quote
