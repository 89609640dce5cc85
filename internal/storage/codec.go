package storage

import (
	"encoding/json"
	"errors"

	"tetrion/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRun(r model.Run) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRun(data []byte) (model.Run, error) {
	var run model.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return model.Run{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.Run{}, err
	}
	return run, nil
}

func EncodeEvaluation(e model.Evaluation) ([]byte, error) {
	return json.Marshal(e)
}

func DecodeEvaluation(data []byte) (model.Evaluation, error) {
	var eval model.Evaluation
	if err := json.Unmarshal(data, &eval); err != nil {
		return model.Evaluation{}, err
	}
	if err := checkVersion(eval.VersionedRecord); err != nil {
		return model.Evaluation{}, err
	}
	return eval, nil
}

func EncodeHistory(history []model.IterationPoint) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeHistory(data []byte) ([]model.IterationPoint, error) {
	var history []model.IterationPoint
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
