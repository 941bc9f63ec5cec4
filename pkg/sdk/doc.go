// Package scriptforge is an in-process client for screenplay scene and outline generation.
//
// The client loads a corpus of plain-text screenplays, ranks it against each prompt and
// asks a chat-completion model to write the result. Without a model, or when the call
// fails, content is assembled deterministically from the corpus and fixed filler lines.
//
//	client, _ := scriptforge.New(
//	    scriptforge.WithCorpusDirs("training", "scripts"),
//	    scriptforge.WithOpenAI(os.Getenv("OPENAI_API_KEY"), "", "gpt-3.5-turbo"),
//	)
//	scene, _ := client.Generate(ctx, "a heist at midnight", scriptforge.Scene)
//	fmt.Println(scene.Content)
//
// Submitted scripts become part of the corpus for the lifetime of the client:
//
//	script, count, _ := client.Train(ctx, scriptforge.TrainInput{Content: text})
package scriptforge
