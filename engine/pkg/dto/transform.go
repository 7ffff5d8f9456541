// Package dto
// @Title  空间变换
// @Description  对象池只透传位置和朝向,不做任何计算
// @Author  yr  2026/10/16
// @Update  yr  2026/10/16
package dto

type Vector3 struct {
	X, Y, Z float32
}

var Vector3Zero = Vector3{}

type Quaternion struct {
	X, Y, Z, W float32
}

// QuaternionIdentity 无旋转
var QuaternionIdentity = Quaternion{W: 1}
