package config

type WorkerKeyStruct struct {
	PersistAnswersQueue  string
	PersistGradingsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistAnswersQueue:  "persist_answers_queue",
	PersistGradingsQueue: "persist_gradings_queue",
}
