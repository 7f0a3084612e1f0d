package models

// RoomType distinguishes ordinary rooms from laboratories.
type RoomType string

const (
	RoomTypeOrdinary RoomType = "ORDINARY"
	RoomTypeLab      RoomType = "LAB"
)

// Room is a physical room that can host a session.
type Room struct {
	ID         string   `db:"id" json:"id" csv:"id"`
	Name       string   `db:"name" json:"name" csv:"name"`
	Capacity   int      `db:"capacity" json:"capacity" csv:"capacity"`
	Type       RoomType `db:"type" json:"type" csv:"type"`
	BuildingID string   `db:"building_id" json:"building_id,omitempty" csv:"building_id"`
}
