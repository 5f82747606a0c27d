package trx

import "go.mongodb.org/mongo-driver/bson/primitive"

// Semua backend memakai id berbentuk ObjectID (24 hex) supaya validasi
// format di API layer sama untuk mongo, postgres, maupun memory.

func NewID() string { return primitive.NewObjectID().Hex() }

func ValidID(id string) bool { return primitive.IsValidObjectID(id) }
