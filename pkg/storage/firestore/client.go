package firestore

import (
	"cloud.google.com/go/firestore"

	shared "github.com/pep-pro/server/pkg"
	"github.com/pep-pro/server/pkg/types"
)

type Client struct {
	fs *firestore.Client
}

func NewClient(client *firestore.Client) *Client {
	return &Client{fs: client}
}

func (c *Client) Close() error {
	return c.fs.Close()
}

func (c *Client) Patients() *Collection[types.Patient] {
	return &Collection[types.Patient]{
		Ref:           c.fs.Collection(shared.CollectionPatients),
		ToFirestore:   PatientToFirestore,
		FromFirestore: FirestoreToPatient,
	}
}

func (c *Client) PainPoints() *Collection[types.PainPoint] {
	return &Collection[types.PainPoint]{
		Ref:           c.fs.Collection(shared.CollectionPainPoints),
		ToFirestore:   PainPointToFirestore,
		FromFirestore: FirestoreToPainPoint,
	}
}

func (c *Client) Exercises() *Collection[types.Exercise] {
	return &Collection[types.Exercise]{
		Ref:           c.fs.Collection(shared.CollectionExercises),
		ToFirestore:   ExerciseToFirestore,
		FromFirestore: FirestoreToExercise,
	}
}

// PatientExercises is the junction collection linking patients to the
// exercises in their plan, one document per assignment event.
func (c *Client) PatientExercises() *Collection[types.PatientExercise] {
	return &Collection[types.PatientExercise]{
		Ref:           c.fs.Collection(shared.CollectionPatientExercises),
		ToFirestore:   PatientExerciseToFirestore,
		FromFirestore: FirestoreToPatientExercise,
	}
}
