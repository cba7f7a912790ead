package mongo

import (
	"context"
	"log"

	"verum/academy-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// watchCollection implements the snapshot subscription contract on top of
// a MongoDB change stream. refresh re-runs the subscription's query and
// delivers the full result set; it is invoked once immediately after
// registration and again on every change event. The returned CancelFunc
// stops the stream; refresh is never invoked after it returns.
//
// match optionally narrows the stream (e.g. to one documentKey). Queries
// filtered on document fields keep match nil and refresh on every event
// in the collection: delete events carry no fullDocument to filter on,
// and over-delivery of snapshots is harmless under this contract.
func watchCollection(ctx context.Context, coll *mongo.Collection, match bson.M, refresh func(context.Context)) (repository.CancelFunc, error) {
	pipeline := mongo.Pipeline{}
	if match != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	stream, err := coll.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer stream.Close(context.Background())

		refresh(watchCtx)

		for stream.Next(watchCtx) {
			refresh(watchCtx)
		}
		if err := stream.Err(); err != nil && watchCtx.Err() == nil {
			log.Printf("WARN: change stream on %s ended: %v", coll.Name(), err)
		}
	}()

	return func() {
		cancel()
		<-done
	}, nil
}
